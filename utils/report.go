package utils

import (
	"encoding/xml"
	"fmt"
	"os"
)

// Outcome is the terminal state of one video.
type Outcome string

const (
	OutcomeRelocated           Outcome = "relocated"
	OutcomeRenamedNotRelocated Outcome = "renamed_not_relocated"
	OutcomeRoutedToError       Outcome = "routed_to_error"
	OutcomeRoutingFailed       Outcome = "routing_failed"
	OutcomeSkipped             Outcome = "skipped"
	OutcomeFailed              Outcome = "failed"
)

type ItemResult struct {
	Outcome   Outcome `xml:"outcome,attr"`
	VideoFile string  `xml:"VideoFile"`
	FinalPath string  `xml:"FinalPath,omitempty"`
	Title     string  `xml:"Title,omitempty"`
	Score     string  `xml:"Score,omitempty"`
	Language  string  `xml:"Language,omitempty"`
	Error     string  `xml:"Error,omitempty"`

	Err error `xml:"-"`
}

type RunReport struct {
	XMLName xml.Name     `xml:"ProcessingReport"`
	Results []ItemResult `xml:"Result"`
}

func (r *RunReport) add(res ItemResult) {
	if res.Err != nil {
		res.Error = res.Err.Error()
	}
	r.Results = append(r.Results, res)
}

// Count returns how many results ended in outcome o.
func (r RunReport) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

func WriteReport(outputXML string, report RunReport) error {
	file, err := os.Create(outputXML)
	if err != nil {
		return fmt.Errorf("failed to create XML file '%s': %w", outputXML, err)
	}
	defer file.Close()

	if _, err := file.WriteString(xml.Header); err != nil {
		return fmt.Errorf("failed to write XML header to '%s': %w", outputXML, err)
	}
	encoder := xml.NewEncoder(file)
	encoder.Indent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to encode XML to '%s': %w", outputXML, err)
	}
	if err := encoder.Flush(); err != nil {
		return fmt.Errorf("failed to flush XML encoder: %w", err)
	}
	return file.Close()
}
