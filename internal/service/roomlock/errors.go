package roomlock

import "errors"

// ErrLockTimeout блокировка комнаты не получена за отведённое время; операцию можно повторить
var ErrLockTimeout = errors.New("roomlock: lock acquisition timeout")
