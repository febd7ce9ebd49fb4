package broadcast

import "fmt"

// TopicAll получает события всех комнат
const TopicAll = "all"

// RoomTopic топик событий одной комнаты
func RoomTopic(roomID int64) string {
	return fmt.Sprintf("room:%d", roomID)
}

// HotelTopic топик событий всех комнат отеля
func HotelTopic(hotelID int64) string {
	return fmt.Sprintf("hotel:%d", hotelID)
}
