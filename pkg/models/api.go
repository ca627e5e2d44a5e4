package models

type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type Warning struct {
	Code        string  `json:"code"`
	Description string  `json:"description,omitempty"`
	Severity    string  `json:"severity,omitempty"`
	Confidence  float64 `json:"confidence"`
	Decision    string  `json:"decision,omitempty"`
}

type OutputFile struct {
	Name     string `json:"name"`
	FileName string `json:"fileName"`
}

// Stored result of one verification request
type Transaction struct {
	TransactionID string            `json:"transactionId"`
	Decision      string            `json:"decision"`
	ProfileID     string            `json:"profileId,omitempty"`
	CustomData    string            `json:"customData,omitempty"`
	Docupass      string            `json:"docupass,omitempty"`
	CreatedAt     int64             `json:"createdAt"`
	Data          map[string]any    `json:"data,omitempty"`
	Warning       []Warning         `json:"warning,omitempty"`
	OutputImage   map[string]string `json:"outputImage,omitempty"`
	OutputFile    []OutputFile      `json:"outputFile,omitempty"`
}

type TransactionList struct {
	Items  []Transaction `json:"items"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

type ContractTemplate struct {
	TemplateID  string `json:"templateId"`
	Name        string `json:"name"`
	Content     string `json:"content,omitempty"`
	Orientation string `json:"orientation"`
	Timezone    string `json:"timezone"`
	Font        string `json:"font"`
	UpdatedAt   int64  `json:"updatedAt"`
}

type ContractTemplateList struct {
	Items  []ContractTemplate `json:"items"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

type Docupass struct {
	Reference  string `json:"reference"`
	URL        string `json:"url"`
	Profile    string `json:"profile"`
	Mode       int    `json:"mode"`
	Reusable   bool   `json:"reusable"`
	CustomData string `json:"customData,omitempty"`
	CreatedAt  int64  `json:"createdAt"`
}

type DocupassList struct {
	Items  []Docupass `json:"items"`
	Total  int        `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

type ExportResponse struct {
	URL string `json:"Url"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
