package domain

import "errors"

// TableStatus is the occupancy of a dining table.
type TableStatus string

const (
	TableAvailable TableStatus = "AVAILABLE"
	TableOccupied  TableStatus = "OCCUPIED"
)

var ErrInvalidTableNumber = errors.New("table number must be greater than zero")

// Table is a dining table managed by the restaurant.
type Table struct {
	ID     string
	Number int
	Status TableStatus
}

func NewTable(id string, number int) (*Table, error) {
	if number <= 0 {
		return nil, ErrInvalidTableNumber
	}
	return &Table{ID: id, Number: number, Status: TableAvailable}, nil
}
