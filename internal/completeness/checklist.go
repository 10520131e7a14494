package completeness

// Checklist is the fixed catalog of documents a German building application
// is checked against, in report order. Every report enumerates each entry
// exactly once; "not mentioned" is a valid outcome per entry, not an error.
var Checklist = []string{
	"Bauantragsformular",
	"Lageplan",
	"Grundrisse",
	"Schnitte",
	"Ansichten",
	"Baubeschreibung",
	"Berechnung der Wohn- und Nutzfläche",
	"GRZ/GFZ-Berechnung",
	"Standsicherheitsnachweis",
	"Entwässerungsplan",
	"Freiflächenplan",
	"Stellplatznachweis",
	"Brandschutznachweis",
	"Wärmeschutznachweis",
	"Auszug aus der Flurkarte",
	"Nachbarzustimmung",
	"Baustatistikbogen",
}

// Presence outcomes per checklist entry.
const (
	PresencePresent      = "present"
	PresenceNotMentioned = "not_mentioned"
	PresenceUnclear      = "unclear"
)

// Report statuses.
const (
	StatusComplete   = "Complete"
	StatusIncomplete = "Incomplete"
)

// Entry is the outcome for one checklist document.
type Entry struct {
	DocumentName   string `json:"document_name"`
	PresenceStatus string `json:"presence_status"`
	ActionNeeded   string `json:"action_needed"`
}

// Report is the result of a completeness check over one submission. Entries
// follow Checklist order and always cover all of it.
type Report struct {
	ApplicationType string  `json:"application_type"`
	Status          string  `json:"status"`
	Entries         []Entry `json:"entries"`
}
