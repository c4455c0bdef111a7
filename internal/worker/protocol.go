package worker

import (
	"github.com/ivlev/lyric2video/internal/director"
	"github.com/ivlev/lyric2video/internal/renderer"
)

// CommandType names a control message
type CommandType string

const (
	CmdInit    CommandType = "INIT"
	CmdSeek    CommandType = "SEEK"
	CmdPlay    CommandType = "PLAY"
	CmdPause   CommandType = "PAUSE"
	CmdDestroy CommandType = "DESTROY"
)

// Command is a message to the worker
type Command struct {
	Type   CommandType
	Scene  *director.Scene // INIT
	Width  int             // INIT
	Height int             // INIT
	Time   float64         // SEEK, seconds

	seq uint64
}

// Init builds an INIT command
func Init(scene director.Scene, width, height int) Command {
	return Command{Type: CmdInit, Scene: &scene, Width: width, Height: height}
}

// Seek builds a SEEK command
func Seek(seconds float64) Command {
	return Command{Type: CmdSeek, Time: seconds}
}

// ResponseType names a message from the worker
type ResponseType string

const (
	RespBaking    ResponseType = "BAKING"
	RespReady     ResponseType = "READY"
	RespFrame     ResponseType = "FRAME"
	RespError     ResponseType = "ERROR"
	RespDestroyed ResponseType = "DESTROYED"
)

// Response is a message from the worker
type Response struct {
	Type     ResponseType
	Session  string
	Progress int             // BAKING, 0-100
	Frame    *renderer.Frame // FRAME
	Err      error           // ERROR
}
