package models

import "fmt"

// Status is the workflow state stored in statoOfferta.
type Status string

const (
	StatusLoaded      Status = "Caricato"
	StatusInProgress  Status = "In Lavorazione"
	StatusDocumentsOK Status = "Documenti OK"
	StatusDocumentsKO Status = "Documenti KO"
	StatusIntegration Status = "Integrazione"
	StatusEntryOK     Status = "Inserimento OK"
	StatusEntryKO     Status = "Inserimento KO"
	StatusPaid        Status = "Pagato"
	StatusChargedBack Status = "Stornato"
	StatusCancelled   Status = "Annullato"
)

var allStatuses = []Status{
	StatusLoaded,
	StatusInProgress,
	StatusDocumentsOK,
	StatusDocumentsKO,
	StatusIntegration,
	StatusEntryOK,
	StatusEntryKO,
	StatusPaid,
	StatusChargedBack,
	StatusCancelled,
}

// ParseStatus returns the Status matching s exactly.
func ParseStatus(s string) (Status, error) {
	for _, st := range allStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown contract status %q", s)
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

func (s Status) String() string {
	return string(s)
}
