package broadcast

import "errors"

var (
	// ErrSubscriberOverflow подписка закрыта, потому что подписчик не успевал читать события
	ErrSubscriberOverflow = errors.New("broadcast: subscriber queue overflow")

	// ErrClosed брокер остановлен
	ErrClosed = errors.New("broadcast: broadcaster closed")

	// ErrInvalidTopic возвращается для пустого топика
	ErrInvalidTopic = errors.New("broadcast: invalid topic")
)
