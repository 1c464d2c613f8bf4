package model

// PaycheckFrequency enumerates supported pay schedules. Only biweekly is
// implemented; other values round-trip through storage but are rejected by
// scheduling.
type PaycheckFrequency string

// PaycheckFrequencyBiweekly is a paycheck every 14 days.
const PaycheckFrequencyBiweekly PaycheckFrequency = "biweekly"

// PaycheckSettings is a singleton describing the user's pay schedule. It is
// lazily created with empty defaults on first read.
type PaycheckSettings struct {
	LastPaycheckDate Date              `json:"lastPaycheckDate"`
	Frequency        PaycheckFrequency `json:"frequency"`
}

// Configured reports whether the schedule has enough data to derive paydays.
func (p *PaycheckSettings) Configured() bool {
	return !p.LastPaycheckDate.IsZero() && p.Frequency == PaycheckFrequencyBiweekly
}
