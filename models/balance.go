package models

type Balance struct {
	Total float64
	Free  float64
	Used  float64
}

func NewBalance(free float64, used float64) *Balance {
	return &Balance{
		Total: free + used,
		Free:  free,
		Used:  used,
	}
}
