package utils

import "fmt"

var transcriptionPrompts = map[string]string{
	"es": "Por favor, transcribe este audio en español.",
	"en": "Please transcribe this audio in English.",
}

// TranscriptionPrompt returns the transcription instruction for a language
// code, falling back to a generic instruction naming the code.
func TranscriptionPrompt(language string) string {
	if p, ok := transcriptionPrompts[language]; ok {
		return p
	}
	return fmt.Sprintf("Please transcribe this audio. The spoken language is %q.", language)
}

func titlePrompt(transcription string) string {
	return "Analiza la siguiente transcripción. Tu tarea es extraer el nombre de la película principal.\n" +
		"- IMPORTANTE: Si el título en la transcripción está en inglés u otro idioma, busca y devuelve el título con el que se estrenó oficialmente en España, no una traducción literal.\n" +
		"- Si la película existe y estás 100% seguro, devuelve ÚNICAMENTE su título oficial en español (de España).\n" +
		"- Si no estás seguro, no existe o no encuentras el título español, DEBES devolver: " + TitleNotFound + "\n\n" +
		fmt.Sprintf("Transcripción: %q", transcription)
}

func scorePrompt(transcription string) string {
	return "Analiza la siguiente transcripción. Extrae la puntuación numérica (de 0 a 10).\n" +
		"- Si encuentras una puntuación (incluyendo decimales o 'y medio'), devuelve ÚNICAMENTE el número (ej: '8', '9.5').\n" +
		"- Si no hay puntuación, DEBES devolver: " + ScoreNone + "\n\n" +
		fmt.Sprintf("Transcripción: %q", transcription)
}
