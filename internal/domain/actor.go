package domain

// Actor инициатор операции над бронированием
type Actor struct {
	UserID   int64
	Override bool // персонал отеля: может действовать с чужими бронированиями
}

// CanAccess проверяет, что actor владелец брони или имеет override
func (a Actor) CanAccess(b *Booking) bool {
	return a.Override || (a.UserID > 0 && a.UserID == b.UserID)
}
