package queue

// WorkItem is the payload carried by one queued translation request. It
// includes the extracted page text so the worker does not have to re-open
// the PDF.
type WorkItem struct {
	DocumentID     string `json:"document_id"`
	Page           int    `json:"page"`
	TargetLanguage string `json:"target_language"`
	OriginalText   string `json:"original_text"`
}
