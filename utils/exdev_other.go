//go:build !unix && !windows

package utils

func isEXDEV(error) bool { return false }
