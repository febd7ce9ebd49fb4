package domain

// Room тип номера отеля с количеством одинаковых физических номеров TotalUnits
type Room struct {
	ID                 int64
	HotelID            int64
	NightlyPrice       float64
	TotalUnits         int
	Capacity           int // максимум гостей в одном номере
	Active             bool
	CancellationPolicy CancellationPolicy
	EventSeq           int64 // номер последнего опубликованного события по комнате
}

// MaxGuests returns how many guests fit into the given number of units
func (r *Room) MaxGuests(units int) int {
	return r.Capacity * units
}

// SupportsParallelBookings returns true if the room type has more than one unit
func (r *Room) SupportsParallelBookings() bool {
	return r.TotalUnits > 1
}
