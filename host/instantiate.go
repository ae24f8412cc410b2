package host

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/experimental"
	"github.com/tetratelabs/wazero/experimental/logging"

	"github.com/gmofishsauce/rlc/analyzer"
	"github.com/gmofishsauce/rlc/ast"
)

// config holds Instantiate's optional settings, filled in by the
// functional Options (WithCallTracing, WithLogger) passed to it.
type config struct {
	trace  bool
	logger *log.Logger
}

// Option configures Instantiate.
type Option func(*config)

// WithCallTracing enables wazero's experimental/logging function-call
// tracing for every host import call, useful while developing or
// debugging a compiled robot module (§AMBIENT-A).
func WithCallTracing() Option {
	return func(c *config) { c.trace = true }
}

// WithLogger directs trap and call-tracing output to logger instead of
// the package default (stderr).
func WithLogger(logger *log.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// Robot is a compiled robot module instantiated against a host API
// implementation — the live counterpart of a wasmmod.Emit result.
type Robot struct {
	runtime wazero.Runtime
	module  api.Module
	logger  *log.Logger
}

// Instantiate binds impl to the fixed host import registry
// (analyzer.Registry) as the WASM module named "env" and instantiates
// wasmBytes against it. This is the "Instantiation adapter" named in
// spec.md's overview table (§2) and §6.1/§6.2.
func Instantiate(ctx context.Context, wasmBytes []byte, impl API, opts ...Option) (*Robot, error) {
	cfg := config{logger: log.New(os.Stderr, "rlc-host: ", log.LstdFlags)}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.trace {
		ctx = context.WithValue(ctx, experimental.FunctionListenerFactoryKey{},
			logging.NewHostLoggingListenerFactory(traceWriter{cfg.logger}, logging.LogScopeAll))
	}

	rt := wazero.NewRuntime(ctx)

	env := rt.NewHostModuleBuilder("env")
	for _, f := range analyzer.Registry {
		bindImport(env, f, impl)
	}
	if _, err := env.Instantiate(ctx); err != nil {
		rt.Close(ctx)
		return nil, wrapInstantiateError(err)
	}

	mod, err := rt.Instantiate(ctx, wasmBytes)
	if err != nil {
		rt.Close(ctx)
		return nil, wrapInstantiateError(err)
	}

	return &Robot{runtime: rt, module: mod, logger: cfg.logger}, nil
}

// Close releases the underlying wazero runtime and every module it
// instantiated.
func (r *Robot) Close(ctx context.Context) error {
	return r.runtime.Close(ctx)
}

// HasInit reports whether the compiled module exports init (§6.2:
// present iff the source declared func init() or any global has an
// initializer).
func (r *Robot) HasInit() bool {
	return r.module.ExportedFunction("init") != nil
}

// Init calls the module's init export exactly once, per §6.2's
// requirement that the host call it before the first Tick. It is a
// no-op if the module has no init export.
func (r *Robot) Init(ctx context.Context) error {
	fn := r.module.ExportedFunction("init")
	if fn == nil {
		return nil
	}
	_, err := fn.Call(ctx)
	if e := wrapCallError(err); e != nil {
		r.logTrap("init", e)
		return e
	}
	return nil
}

// Tick calls the module's required tick export once.
func (r *Robot) Tick(ctx context.Context) error {
	fn := r.module.ExportedFunction("tick")
	if fn == nil {
		return fmt.Errorf("host: module does not export tick")
	}
	_, err := fn.Call(ctx)
	if e := wrapCallError(err); e != nil {
		r.logTrap("tick", e)
		return e
	}
	return nil
}

// Event calls the on_<name> export for the named event with args
// already encoded to wazero's raw uint64 stack representation
// (api.EncodeI32 / api.EncodeF32), in the event's declared parameter
// order (§4.3 event signature table).
func (r *Robot) Event(ctx context.Context, name string, args ...uint64) error {
	fn := r.module.ExportedFunction("on_" + name)
	if fn == nil {
		return fmt.Errorf("host: module does not export event %q", name)
	}
	_, err := fn.Call(ctx, args...)
	if e := wrapCallError(err); e != nil {
		r.logTrap("on_"+name, e)
		return e
	}
	return nil
}

// HasEvent reports whether the compiled module exports the named
// event handler.
func (r *Robot) HasEvent(name string) bool {
	return r.module.ExportedFunction("on_"+name) != nil
}

// Memory exposes the module's single linear memory (§6.2).
func (r *Robot) Memory() api.Memory {
	return r.module.Memory()
}

func (r *Robot) logTrap(export string, err error) {
	if IsTrap(err) {
		r.logger.Printf("trap in %s: %v", export, err)
	}
}

// bindImport registers one analyzer.Registry entry as a WASM import in
// builder, decoding/encoding its declared parameter and return types
// and dispatching to the matching API method. Using
// WithGoModuleFunction against the registry's own type lists, instead
// of 24 hand-written typed closures, keeps the binding driven by the
// single shared registry rather than a second copy of the signature
// table.
func bindImport(builder wazero.HostModuleBuilder, f analyzer.APIFunc, impl API) {
	params := apiValueTypes(f.Params)
	results := apiValueTypes(f.Returns)
	fn := api.GoModuleFunc(func(_ context.Context, _ api.Module, stack []uint64) {
		dispatch(f.Name, impl, stack)
	})
	builder.NewFunctionBuilder().WithGoModuleFunction(fn, params, results).Export(f.Name)
}

func apiValueTypes(types []*ast.Type) []api.ValueType {
	out := make([]api.ValueType, len(types))
	for i, t := range types {
		out[i] = apiValueType(t)
	}
	return out
}

func apiValueType(t *ast.Type) api.ValueType {
	if t == ast.Int || t == ast.Bool {
		return api.ValueTypeI32
	}
	return api.ValueTypeF32
}

// dispatch invokes the registry function named name against impl,
// decoding arguments from and encoding any result back into stack per
// wazero's GoModuleFunction convention (§6.2's import signatures).
func dispatch(name string, impl API, stack []uint64) {
	switch name {
	case "move":
		impl.Move(api.DecodeF32(stack[0]))
	case "turn":
		impl.Turn(api.DecodeF32(stack[0]))
	case "turnGun":
		impl.TurnGun(api.DecodeF32(stack[0]))
	case "fire":
		impl.Fire(api.DecodeF32(stack[0]))
	case "turnRadar":
		impl.TurnRadar(api.DecodeF32(stack[0]))
	case "x":
		stack[0] = api.EncodeF32(impl.X())
	case "y":
		stack[0] = api.EncodeF32(impl.Y())
	case "heading":
		stack[0] = api.EncodeF32(impl.Heading())
	case "gunHeading":
		stack[0] = api.EncodeF32(impl.GunHeading())
	case "radarHeading":
		stack[0] = api.EncodeF32(impl.RadarHeading())
	case "speed":
		stack[0] = api.EncodeF32(impl.Speed())
	case "energy":
		stack[0] = api.EncodeF32(impl.Energy())
	case "arenaWidth":
		stack[0] = api.EncodeF32(impl.ArenaWidth())
	case "arenaHeight":
		stack[0] = api.EncodeF32(impl.ArenaHeight())
	case "random":
		stack[0] = api.EncodeF32(impl.Random())
	case "clamp":
		stack[0] = api.EncodeF32(impl.Clamp(api.DecodeF32(stack[0]), api.DecodeF32(stack[1]), api.DecodeF32(stack[2])))
	case "sin":
		stack[0] = api.EncodeF32(impl.Sin(api.DecodeF32(stack[0])))
	case "cos":
		stack[0] = api.EncodeF32(impl.Cos(api.DecodeF32(stack[0])))
	case "sqrt":
		stack[0] = api.EncodeF32(impl.Sqrt(api.DecodeF32(stack[0])))
	case "abs":
		stack[0] = api.EncodeF32(impl.Abs(api.DecodeF32(stack[0])))
	case "atan2":
		stack[0] = api.EncodeF32(impl.Atan2(api.DecodeF32(stack[0]), api.DecodeF32(stack[1])))
	case "debugInt":
		impl.DebugInt(int32(uint32(stack[0])))
	case "debugFloat":
		impl.DebugFloat(api.DecodeF32(stack[0]))
	case "debugBool":
		impl.DebugBool(uint32(stack[0]) != 0)
	}
}

// traceWriter adapts a *log.Logger to the io.Writer/io.StringWriter
// pair experimental/logging.NewHostLoggingListenerFactory requires.
type traceWriter struct {
	logger *log.Logger
}

func (w traceWriter) Write(p []byte) (int, error) {
	w.logger.Printf("%s", p)
	return len(p), nil
}

func (w traceWriter) WriteString(s string) (int, error) {
	w.logger.Print(s)
	return len(s), nil
}

var _ io.Writer = traceWriter{}
