package model

type ProfileReadiness struct {
	IsReady         bool     `json:"is_ready"`
	MissingCritical []string `json:"missing_critical"`
	MissingOptional []string `json:"missing_optional"`
	Note            string   `json:"note"`
}
