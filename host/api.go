// Package host is the instantiation adapter (spec.md §2 "Instantiation
// adapter", §6.1/§6.2): it binds a Go implementation of the fixed host
// API registry (analyzer.Registry) to a compiled module's WASM
// imports and instantiates it with tetratelabs/wazero, mirroring the
// tinygo/greet.go and function-listener examples retrieved for this
// spec for the runtime/host-module-builder/instantiate shape.
package host

// API is the set of operations a host must supply to back the fixed
// import registry (analyzer.Registry, SPEC_FULL §G), one method per
// registry entry, grouped by family: movement, gun, radar, status,
// arena, utility, math, debug.
type API interface {
	// Movement
	Move(distance float32)
	Turn(heading float32)

	// Gun
	TurnGun(heading float32)
	Fire(power float32)

	// Radar
	TurnRadar(heading float32)

	// Status
	X() float32
	Y() float32
	Heading() float32
	GunHeading() float32
	RadarHeading() float32
	Speed() float32
	Energy() float32

	// Arena
	ArenaWidth() float32
	ArenaHeight() float32

	// Utility
	Random() float32
	Clamp(v, lo, hi float32) float32

	// Math
	Sin(angle float32) float32
	Cos(angle float32) float32
	Sqrt(v float32) float32
	Abs(v float32) float32
	Atan2(y, x float32) float32

	// Debug
	DebugInt(v int32)
	DebugFloat(v float32)
	DebugBool(v bool)
}
