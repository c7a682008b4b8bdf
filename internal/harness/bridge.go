package harness

import "math"

// Bridge fabricates one range reading per tick: it derives the true distance
// to the synthetic seafloor from the current vehicle position, pushes it
// through the corruption pipeline and forwards the result to the vehicle's
// sensor-ingestion interface.
type Bridge struct {
	ctx *Context
}

// NewBridge creates the bridge for one run context.
func NewBridge(ctx *Context) *Bridge {
	return &Bridge{ctx: ctx}
}

// Tick produces and delivers one sample. With no position available the tick
// is skipped and a rate-limited diagnostic goes out; the run itself carries
// on.
func (b *Bridge) Tick() {
	ctx := b.ctx

	if !ctx.PosValid {
		ctx.Messenger.Send("bridge.no_position", "no vehicle position, skipping range sample")
		return
	}
	if !ctx.HaveOrigin {
		ctx.Origin = ctx.Pos
		ctx.HaveOrigin = true
	}

	dist := math.Hypot(ctx.Pos.X-ctx.Origin.X, ctx.Pos.Y-ctx.Origin.Y)
	sample := ctx.Waveform.Evaluate(dist)
	seafloorZ := -ctx.Cfg.MeanDepth + sample.Value
	trueRange := ctx.Pos.Z - seafloorZ
	corrupted := ctx.Pipeline.Apply(trueRange)
	ctx.LastSeafloorDepth = -seafloorZ

	if corrupted > 0 {
		if ctx.Ingestor != nil && !ctx.Ingestor.Ingest(corrupted) {
			ctx.Messenger.Send("bridge.ingest_rejected", "range backend rejected injected sample")
		}
		ctx.LastTrueRange = trueRange
		ctx.LastCorruptedRange = corrupted
		ctx.HaveRange = true
	}

	ctx.Log.Debug().
		Str("run_id", ctx.RunID.String()).
		Float64("sub_depth", -ctx.Pos.Z).
		Float64("seafloor_depth", -seafloorZ).
		Float64("true_range", trueRange).
		Float64("corrupted_range", corrupted).
		Msg("range sample")
}
