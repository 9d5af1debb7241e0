package commands

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-comet/internal/core/beacon"
	"github.com/penwyp/go-comet/internal/data/protocol"
	"github.com/penwyp/go-comet/internal/util"
)

const drainTimeout = 5 * time.Second

var (
	emitAddr  string
	emitName  string
	emitRate  int
	emitCount int
	emitQuit  bool
)

var emitCmd = &cobra.Command{
	Use:   "emit",
	Short: "Send synthetic events to an inspector",
	Long: `Pretends to be an instrumented application: every tick reports one update
followed by the view, layout, draw and present spans of a frame, plus
occasional subscription counts and custom spans.`,
	RunE: runEmit,
}

func init() {
	rootCmd.AddCommand(emitCmd)

	emitCmd.Flags().StringVar(&emitAddr, "addr", protocol.DefaultAddress,
		"Inspector address")
	emitCmd.Flags().StringVar(&emitName, "name", "comet-demo",
		"Application name sent in the handshake")
	emitCmd.Flags().IntVar(&emitRate, "rate", 60,
		"Updates per second")
	emitCmd.Flags().IntVar(&emitCount, "count", 0,
		"Number of updates to send (0 = until interrupted)")
	emitCmd.Flags().BoolVar(&emitQuit, "quit", false,
		"Ask the inspector to quit when done")
}

func runEmit(cmd *cobra.Command, args []string) error {
	if emitRate <= 0 || emitRate > 10000 {
		return fmt.Errorf("rate must be between 1 and 10000, got %d", emitRate)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := protocol.NewClient(emitAddr, emitName, Version)
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- client.Run(runCtx)
	}()

	gen := newGenerator(rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)))
	ticker := time.NewTicker(time.Second / time.Duration(emitRate))
	defer ticker.Stop()

	sent := 0
loop:
	for emitCount == 0 || sent < emitCount {
		select {
		case <-ctx.Done():
			break loop
		case now := <-ticker.C:
			for _, event := range gen.frame(now) {
				client.Report(event)
			}
			sent++
		}
	}

	if emitQuit {
		client.Report(beacon.QuitRequested{Time: time.Now()})
	}

	drain(ctx, client)
	cancel()
	err := <-done

	util.LogInfo("emit finished", util.F("updates", sent), util.F("dropped", client.Dropped()))
	fmt.Fprintf(cmd.OutOrStdout(), "sent %d updates (%d events dropped)\n", sent, client.Dropped())
	return err
}

// drain waits for the client queue to empty so the last events are written.
func drain(ctx context.Context, client *protocol.Client) {
	deadline := time.After(drainTimeout)
	poll := time.NewTicker(10 * time.Millisecond)
	defer poll.Stop()

	for client.Pending() > 0 {
		select {
		case <-ctx.Done():
			return
		case <-deadline:
			util.LogWarn("giving up on unsent events", util.F("pending", client.Pending()))
			return
		case <-poll.C:
		}
	}
	// The last batch may still sit in the write buffer.
	select {
	case <-ctx.Done():
	case <-time.After(100 * time.Millisecond):
	}
}

var messages = []string{"Tick", "Increment", "Decrement", "InputChanged", "Submit", "WindowResized"}

// generator produces plausible frames of a running application.
type generator struct {
	rng    *rand.Rand
	number int
}

func newGenerator(rng *rand.Rand) *generator {
	return &generator{rng: rng}
}

func (g *generator) jitter(base time.Duration) time.Duration {
	return base/2 + time.Duration(g.rng.Int64N(int64(base)))
}

func (g *generator) frame(now time.Time) []beacon.Event {
	g.number++
	at := now
	span := func(base time.Duration, s beacon.Span) beacon.Event {
		d := g.jitter(base)
		at = at.Add(d)
		return beacon.SpanFinished{Time: at, Duration: d, Span: s}
	}

	quads := 20 + g.rng.IntN(40)
	texts := 5 + g.rng.IntN(20)
	triangles := 0
	if g.number%5 == 0 {
		triangles = 1 + g.rng.IntN(4)
	}

	events := []beacon.Event{
		span(200*time.Microsecond, beacon.Update{
			Number:        g.number,
			Message:       messages[g.rng.IntN(len(messages))],
			TasksSpawned:  g.rng.IntN(3),
			Subscriptions: 3,
		}),
		span(400*time.Microsecond, beacon.View{Window: "main"}),
		span(300*time.Microsecond, beacon.Layout{Window: "main"}),
		span(50*time.Microsecond, beacon.Interact{Window: "main"}),
		span(250*time.Microsecond, beacon.Draw{Window: "main"}),
		span(100*time.Microsecond, beacon.Prepare{Primitive: beacon.Quad}),
		span(150*time.Microsecond, beacon.Prepare{Primitive: beacon.Text}),
		span(80*time.Microsecond, beacon.Render{Primitive: beacon.Quad}),
		span(120*time.Microsecond, beacon.Render{Primitive: beacon.Text}),
	}
	if triangles > 0 {
		events = append(events,
			span(60*time.Microsecond, beacon.Prepare{Primitive: beacon.Triangle}),
			span(90*time.Microsecond, beacon.Render{Primitive: beacon.Triangle}))
	}
	events = append(events, span(600*time.Microsecond, beacon.Present{
		Window: "main",
		Layers: 1 + g.rng.IntN(3),
		Prepare: beacon.PrepareStats{
			Quads:     quads,
			Triangles: triangles,
			Texts:     texts,
		},
	}))

	if g.number%10 == 0 {
		events = append(events, beacon.SubscriptionsTracked{Time: at, AmountAlive: 3 + g.rng.IntN(3)})
	}
	if g.number%30 == 0 {
		events = append(events, span(2*time.Millisecond, beacon.Custom{Name: "fetch"}))
	}
	return events
}
