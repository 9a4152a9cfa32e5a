package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"os"
	"runtime"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/coopsync-dev/coopsync/internal/config"
	"github.com/coopsync-dev/coopsync/pkg/protocol"
	"github.com/coopsync-dev/coopsync/pkg/transport"
)

type profile struct {
	Name     string
	Clients  int
	Duration time.Duration
	RPS      float64
}

var profiles = map[string]profile{
	"fast":     {Name: "fast", Clients: 4, Duration: 3 * time.Second, RPS: 10},
	"standard": {Name: "standard", Clients: 8, Duration: 15 * time.Second, RPS: 30},
	"stress":   {Name: "stress", Clients: 32, Duration: 30 * time.Second, RPS: 60},
}

type benchConfig struct {
	Profile  string
	Clients  int
	Duration time.Duration
	RPS      float64
	URL      string
	JSON     string
}

type benchCounters struct {
	sent        atomic.Uint64
	sentBytes   atomic.Uint64
	received    atomic.Uint64
	unmatched   atomic.Uint64
	writeErrors atomic.Uint64
}

func benchCmd(c *cli) *cobra.Command {
	var (
		bc          benchConfig
		profileName string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure relay fan-out throughput and latency",
		Long: `Connect simulated peers to a relay and measure how long each frame
takes to reach the other peers.

Without --url an in-process relay is started from the loaded
configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := profiles[profileName]
			if !ok {
				return fmt.Errorf("bench: unknown profile %q", profileName)
			}
			if bc.Clients <= 0 {
				bc.Clients = p.Clients
			}
			if bc.Duration <= 0 {
				bc.Duration = p.Duration
			}
			if bc.RPS <= 0 {
				bc.RPS = p.RPS
			}
			bc.Profile = p.Name
			if bc.Clients < 2 {
				return errors.New("bench: need at least 2 clients")
			}

			report, err := runBench(cmd.Context(), c.cfg, c.logger, bc)
			if err != nil {
				return err
			}
			if err := writeSummary(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			return writeJSON(bc.JSON, report)
		},
	}

	cmd.Flags().StringVarP(&profileName, "profile", "p", "fast", "profile: fast|standard|stress")
	cmd.Flags().IntVar(&bc.Clients, "clients", 0, "number of peers (overrides profile)")
	cmd.Flags().DurationVar(&bc.Duration, "duration", 0, "run time (overrides profile)")
	cmd.Flags().Float64Var(&bc.RPS, "rps", 0, "frames per second per peer (overrides profile)")
	cmd.Flags().StringVar(&bc.URL, "url", "", "websocket URL of a running relay")
	cmd.Flags().StringVar(&bc.JSON, "json", "", "write the JSON report to this path ('-' for stdout)")

	return cmd
}

// runBench drives bc.Clients peers. Every peer sends RequestChestOpen samples
// with its own player id and a running sequence as chest id, so receivers can
// match each relayed sample to its send time.
func runBench(ctx context.Context, cfg *config.Config, logger *slog.Logger, bc benchConfig) (benchReport, error) {
	url := bc.URL
	if url == "" {
		r := newRelay(cfg, logger)
		ln, err := net.Listen("tcp4", "127.0.0.1:0")
		if err != nil {
			return benchReport{}, fmt.Errorf("bench: listen: %w", err)
		}
		srv := &http.Server{Handler: r.handler}
		go srv.Serve(ln)
		defer func() {
			r.hub.Close()
			_ = srv.Shutdown(context.Background())
		}()
		url = "ws://" + ln.Addr().String() + cfg.Relay.Path
	}

	var (
		counters  benchCounters
		sentAt    sync.Map
		samplesMu sync.Mutex
		samples   []time.Duration
	)
	record := func(d time.Duration) {
		samplesMu.Lock()
		samples = append(samples, d)
		samplesMu.Unlock()
	}

	conns := make([]*transport.Conn, 0, bc.Clients)
	defer func() {
		for _, conn := range conns {
			conn.Close()
		}
	}()
	for i := 0; i < bc.Clients; i++ {
		conn, err := transport.DialRelay(ctx, url, uint32(i+1), transport.WithLogger(logger))
		if err != nil {
			return benchReport{}, err
		}
		conns = append(conns, conn)
	}

	readCtx, stopReading := context.WithCancel(ctx)
	defer stopReading()
	var readers sync.WaitGroup
	for _, conn := range conns {
		readers.Add(1)
		go func() {
			defer readers.Done()
			conn.ReadLoop(readCtx, func(_ context.Context, f transport.Frame) error {
				counters.received.Add(1)
				req, ok := f.Message.(*protocol.RequestChestOpen)
				if !ok {
					return nil
				}
				if f.From != req.RequestingPlayerID {
					counters.unmatched.Add(1)
					return nil
				}
				v, ok := sentAt.Load(sampleKey(req))
				if !ok {
					counters.unmatched.Add(1)
					return nil
				}
				record(time.Since(v.(time.Time)))
				return nil
			})
		}()
	}

	runCtx, cancel := context.WithTimeout(ctx, bc.Duration)
	defer cancel()

	interval := time.Duration(float64(time.Second) / bc.RPS)
	start := time.Now()
	var senders sync.WaitGroup
	for i, conn := range conns {
		senders.Add(1)
		go func(player uint32) {
			defer senders.Done()
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for seq := uint32(0); ; seq++ {
				select {
				case <-runCtx.Done():
					return
				case <-ticker.C:
				}
				req := &protocol.RequestChestOpen{ChestID: seq, RequestingPlayerID: player}
				data, err := protocol.Encode(req)
				if err != nil {
					counters.writeErrors.Add(1)
					return
				}
				sentAt.Store(sampleKey(req), time.Now())
				if err := conn.SendRaw(runCtx, data, "RequestChestOpen"); err != nil {
					if runCtx.Err() != nil {
						return
					}
					counters.writeErrors.Add(1)
					continue
				}
				counters.sent.Add(1)
				counters.sentBytes.Add(uint64(len(data)))
			}
		}(uint32(i + 1))
	}
	senders.Wait()
	elapsed := time.Since(start)

	// Frames in flight get a short grace period before readers stop.
	time.Sleep(100 * time.Millisecond)
	stopReading()
	for _, conn := range conns {
		conn.Close()
	}
	readers.Wait()

	samplesMu.Lock()
	latencies := slices.Clone(samples)
	samplesMu.Unlock()
	slices.Sort(latencies)

	return buildReport(bc, elapsed, latencies, &counters), nil
}

func sampleKey(m *protocol.RequestChestOpen) uint64 {
	return uint64(m.RequestingPlayerID)<<32 | uint64(m.ChestID)
}

// percentile returns the nearest-rank p-quantile of sorted.
func percentile(sorted []time.Duration, p float64) time.Duration {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	rank := int(math.Ceil(p * float64(n)))
	return sorted[min(max(rank, 1), n)-1]
}

type benchReport struct {
	Profile    string  `json:"profile"`
	Peers      int     `json:"peers"`
	DurationMS int64   `json:"duration_ms"`
	RPS        float64 `json:"rps_per_peer"`
	External   bool    `json:"external_relay"`
	Build      string  `json:"build"`
	Go         string  `json:"go"`

	Sent           uint64  `json:"frames_sent"`
	Received       uint64  `json:"frames_received"`
	SentPerSec     float64 `json:"sent_per_sec"`
	ReceivedPerSec float64 `json:"received_per_sec"`
	FanOut         float64 `json:"fan_out"`
	AvgFrameBytes  float64 `json:"avg_frame_bytes"`

	WriteFailures uint64 `json:"write_failures"`
	Unmatched     uint64 `json:"unmatched"`

	Latency latencySummary `json:"latency_ms"`
}

// latencySummary holds delivery latency quantiles in milliseconds.
type latencySummary struct {
	Samples int     `json:"samples"`
	Min     float64 `json:"min"`
	P50     float64 `json:"p50"`
	P95     float64 `json:"p95"`
	P99     float64 `json:"p99"`
	Max     float64 `json:"max"`
}

func summarize(sorted []time.Duration) latencySummary {
	l := latencySummary{Samples: len(sorted)}
	if len(sorted) == 0 {
		return l
	}
	millis := func(d time.Duration) float64 { return d.Seconds() * 1000 }
	l.Min = millis(sorted[0])
	l.P50 = millis(percentile(sorted, 0.50))
	l.P95 = millis(percentile(sorted, 0.95))
	l.P99 = millis(percentile(sorted, 0.99))
	l.Max = millis(sorted[len(sorted)-1])
	return l
}

func buildReport(bc benchConfig, elapsed time.Duration, latencies []time.Duration, counters *benchCounters) benchReport {
	sent := counters.sent.Load()
	received := counters.received.Load()
	secs := math.Max(0.001, elapsed.Seconds())

	r := benchReport{
		Profile:        bc.Profile,
		Peers:          bc.Clients,
		DurationMS:     bc.Duration.Milliseconds(),
		RPS:            bc.RPS,
		External:       bc.URL != "",
		Build:          strings.TrimSpace(version + " " + commit),
		Go:             runtime.Version(),
		Sent:           sent,
		Received:       received,
		SentPerSec:     float64(sent) / secs,
		ReceivedPerSec: float64(received) / secs,
		WriteFailures:  counters.writeErrors.Load(),
		Unmatched:      counters.unmatched.Load(),
		Latency:        summarize(latencies),
	}
	if sent > 0 {
		r.FanOut = float64(received) / float64(sent)
		r.AvgFrameBytes = float64(counters.sentBytes.Load()) / float64(sent)
	}
	return r
}

func writeSummary(w io.Writer, r benchReport) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "profile\t%s\n", r.Profile)
	fmt.Fprintf(tw, "peers\t%d at %.1f frames/s for %s\n", r.Peers, r.RPS, time.Duration(r.DurationMS)*time.Millisecond)
	fmt.Fprintf(tw, "sent\t%d (%.1f/s, %.0f B avg)\n", r.Sent, r.SentPerSec, r.AvgFrameBytes)
	fmt.Fprintf(tw, "received\t%d (%.1f/s, fan-out %.2f)\n", r.Received, r.ReceivedPerSec, r.FanOut)
	fmt.Fprintf(tw, "errors\t%d write, %d unmatched\n", r.WriteFailures, r.Unmatched)
	if l := r.Latency; l.Samples > 0 {
		fmt.Fprintf(tw, "delivery ms\tmin %.2f  p50 %.2f  p95 %.2f  p99 %.2f  max %.2f\n", l.Min, l.P50, l.P95, l.P99, l.Max)
	} else {
		fmt.Fprintln(tw, "delivery ms\tno samples")
	}
	return tw.Flush()
}

func writeJSON(path string, report benchReport) error {
	if path == "" {
		return nil
	}
	var out io.Writer = os.Stdout
	if path != "-" {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
