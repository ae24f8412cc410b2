package host_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gmofishsauce/rlc/compiler"
	"github.com/gmofishsauce/rlc/host"
)

// fakeRobot records every host call it receives instead of acting on
// it, the same role the teacher's test doubles play in its linker and
// assembler tests, adapted here to wazero's host-module callback shape
// (§AMBIENT-D: this package uses testify/require since it exercises
// wazero directly, matching wazero's own test idiom).
type fakeRobot struct {
	debugInts   []int32
	debugFloats []float32
	debugBools  []bool
	moved       []float32
}

func (f *fakeRobot) Move(d float32)              { f.moved = append(f.moved, d) }
func (f *fakeRobot) Turn(float32)                {}
func (f *fakeRobot) TurnGun(float32)             {}
func (f *fakeRobot) Fire(float32)                {}
func (f *fakeRobot) TurnRadar(float32)           {}
func (f *fakeRobot) X() float32                  { return 0 }
func (f *fakeRobot) Y() float32                  { return 0 }
func (f *fakeRobot) Heading() float32            { return 0 }
func (f *fakeRobot) GunHeading() float32         { return 0 }
func (f *fakeRobot) RadarHeading() float32       { return 0 }
func (f *fakeRobot) Speed() float32              { return 0 }
func (f *fakeRobot) Energy() float32             { return 100 }
func (f *fakeRobot) ArenaWidth() float32         { return 800 }
func (f *fakeRobot) ArenaHeight() float32        { return 600 }
func (f *fakeRobot) Random() float32             { return 0.5 }
func (f *fakeRobot) Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
func (f *fakeRobot) Sin(float32) float32   { return 0 }
func (f *fakeRobot) Cos(float32) float32   { return 1 }
func (f *fakeRobot) Sqrt(v float32) float32 { return v }
func (f *fakeRobot) Abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
func (f *fakeRobot) Atan2(float32, float32) float32 { return 0 }
func (f *fakeRobot) DebugInt(v int32)               { f.debugInts = append(f.debugInts, v) }
func (f *fakeRobot) DebugFloat(v float32)           { f.debugFloats = append(f.debugFloats, v) }
func (f *fakeRobot) DebugBool(v bool)               { f.debugBools = append(f.debugBools, v) }

var _ host.API = (*fakeRobot)(nil)

// TestInstantiate_ArithmeticAndDebug runs §8.3 scenario 2 end to end:
// compile, instantiate with wazero, call tick, and assert on the
// single recorded debugInt call.
func TestInstantiate_ArithmeticAndDebug(t *testing.T) {
	source := "robot \"T\"\nfunc tick(){ x := 2 + 3 * 4\n debugInt(x) }\n"
	result := compiler.Compile(source)
	require.True(t, result.Success, "compile errors: %v", result.Errors)

	ctx := context.Background()
	fake := &fakeRobot{}
	robot, err := host.Instantiate(ctx, result.Wasm, fake)
	require.NoError(t, err)
	defer robot.Close(ctx)

	require.False(t, robot.HasInit())
	require.NoError(t, robot.Tick(ctx))
	require.Equal(t, []int32{14}, fake.debugInts)
}

// TestInstantiate_GlobalInitRunsBeforeTick covers the §6.2 requirement
// that init, when exported, is callable once ahead of tick.
func TestInstantiate_GlobalInitRunsBeforeTick(t *testing.T) {
	source := "robot \"T\"\nvar x int = 7\nfunc tick(){ debugInt(x) }\n"
	result := compiler.Compile(source)
	require.True(t, result.Success, "compile errors: %v", result.Errors)

	ctx := context.Background()
	fake := &fakeRobot{}
	robot, err := host.Instantiate(ctx, result.Wasm, fake)
	require.NoError(t, err)
	defer robot.Close(ctx)

	require.True(t, robot.HasInit())
	require.NoError(t, robot.Init(ctx))
	require.NoError(t, robot.Tick(ctx))
	require.Equal(t, []int32{7}, fake.debugInts)
}

// TestInstantiate_OutOfBoundsIndexTraps covers §6.2's trap contract:
// an out-of-bounds array index raises a trap the host can classify via
// host.IsTrap rather than letting it escape as an opaque error.
func TestInstantiate_OutOfBoundsIndexTraps(t *testing.T) {
	source := "robot \"T\"\nfunc tick(){ var a [2]int\n i := 5\n debugInt(a[i]) }\n"
	result := compiler.Compile(source)
	require.True(t, result.Success, "compile errors: %v", result.Errors)

	ctx := context.Background()
	fake := &fakeRobot{}
	robot, err := host.Instantiate(ctx, result.Wasm, fake)
	require.NoError(t, err)
	defer robot.Close(ctx)

	err = robot.Tick(ctx)
	require.Error(t, err)
	require.True(t, host.IsTrap(err))
}
