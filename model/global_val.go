package model

// websocket message types
const (
	TypeSession     = "session"     // server -> client on connect, content is the session id
	TypeParams      = "params"      // client -> server, content is a SimulateRequest
	TypeSweep       = "sweep"       // both ways: SweepRequest in, SweepResponse out
	TypeSensitivity = "sensitivity" // both ways: SensitivityRequest in, SensitivityResponse out
	TypeReset       = "reset"       // client -> server, drops the session state
	TypeResult      = "result"      // server -> client, content is a SimulateResponse
	TypeError       = "error"       // server -> client, content is the error text
)

const (
	// MillimetresPerMetre converts UI lengths and speeds to SI.
	MillimetresPerMetre = 1000.0

	// CapHeight is the reinforcement height assumed by the dilution ratio, mm.
	CapHeight = 3.0
)
