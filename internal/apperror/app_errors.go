package apperror

import "errors"

var (
	ErrInvalidMove           = errors.New("invalid move")
	ErrInvalidMark           = errors.New("invalid mark")
	ErrSearchOnTerminalBoard = errors.New("search called on a finished board")
	ErrGameFinished          = errors.New("game is already finished")
	ErrNotYourTurn           = errors.New("it's not your turn")
	ErrQuit                  = errors.New("player quit the game")
)
