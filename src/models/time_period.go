package models

// MTimePeriod is the look-back range accepted by the price history endpoint.
type MTimePeriod string

const (
	PeriodDay   MTimePeriod = "1"
	PeriodWeek  MTimePeriod = "7"
	PeriodMonth MTimePeriod = "30"
)

// -----------------------------------------------------------------------------

func (p MTimePeriod) Valid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return true
	}
	return false
}

// -----------------------------------------------------------------------------

func (p MTimePeriod) DisplayName() string {
	switch p {
	case PeriodDay:
		return "1D"
	case PeriodWeek:
		return "7D"
	case PeriodMonth:
		return "30D"
	}
	return string(p)
}
