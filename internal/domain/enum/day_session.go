package enum

// DaySessionStatus is the state of a branch's daily cash float
type DaySessionStatus string

const (
	DayOpen   DaySessionStatus = "OPEN"
	DayClosed DaySessionStatus = "CLOSED"
)
