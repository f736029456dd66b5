package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"os/exec"
	"runtime"
	"runtime/debug"
	"runtime/metrics"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zenith-dev/zenith/pkg/router"
)

const gib = int64(1024 * 1024 * 1024)

type profile struct {
	Name          string
	Sessions      int
	Duration      time.Duration
	RPS           float64
	Routes        int
	LoadDelay     time.Duration
	Overlap       float64
	MaxProcs      int
	MemLimitBytes int64
}

var profiles = map[string]profile{
	"fast": {
		Name:     "fast",
		Sessions: 50,
		Duration: 10 * time.Second,
		RPS:      50,
		Routes:   100,
		Overlap:  0.1,
	},
	"standard": {
		Name:     "standard",
		Sessions: 200,
		Duration: 30 * time.Second,
		RPS:      100,
		Routes:   500,
		Overlap:  0.1,
	},
	"stress": {
		Name:          "stress",
		Sessions:      500,
		Duration:      60 * time.Second,
		RPS:           200,
		Routes:        1000,
		LoadDelay:     time.Millisecond,
		Overlap:       0.25,
		MaxProcs:      4,
		MemLimitBytes: 2 * gib,
	},
}

type benchConfig struct {
	Profile       string
	Sessions      int
	Duration      time.Duration
	RPS           float64
	Routes        int
	LoadDelay     time.Duration
	Overlap       float64
	MaxProcs      int
	MemLimitBytes int64
	JSONOutput    string
}

type benchCounters struct {
	navsStarted atomic.Uint64
	navsSettled atomic.Uint64
	resolves    atomic.Uint64
	prefetches  atomic.Uint64
	mounts      atomic.Uint64
	teardowns   atomic.Uint64
}

type benchErrors struct {
	navFailures      atomic.Uint64
	resolveFailures  atomic.Uint64
	prefetchFailures atomic.Uint64
	totalErrors      atomic.Uint64
}

// outcomeCounts tallies settled navigations by outcome.
type outcomeCounts struct {
	counts [4]atomic.Uint64
}

func (o *outcomeCounts) add(out router.Outcome) {
	if i := int(out); i >= 0 && i < len(o.counts) {
		o.counts[i].Add(1)
	}
}

func (o *outcomeCounts) get(out router.Outcome) uint64 {
	return o.counts[int(out)].Load()
}

func (o *outcomeCounts) snapshot() map[string]uint64 {
	out := make(map[string]uint64)
	for i := range o.counts {
		count := o.counts[i].Load()
		if count == 0 {
			continue
		}
		out[router.Outcome(i).String()] = count
	}
	return out
}

// navObserver feeds settle latencies and outcomes into the collector.
// It stays silent until armed, so warmup navigations are not counted.
type navObserver struct {
	armed    *atomic.Bool
	counters *benchCounters
	outcomes *outcomeCounts
	samples  chan<- time.Duration
}

func (o *navObserver) NavigationStarted(ctx context.Context, path string, token uint64) context.Context {
	return ctx
}

func (o *navObserver) NavigationCompleted(_ context.Context, _ string, _ uint64, outcome router.Outcome, elapsed time.Duration) {
	if !o.armed.Load() {
		return
	}
	o.counters.navsSettled.Add(1)
	o.outcomes.add(outcome)
	o.samples <- elapsed
}

func main() {
	log.SetFlags(0)

	cfg, err := parseConfig()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.MaxProcs > 0 {
		runtime.GOMAXPROCS(cfg.MaxProcs)
	}
	if cfg.MemLimitBytes > 0 {
		debug.SetMemoryLimit(cfg.MemLimitBytes)
	}

	debug.SetGCPercent(100)

	defs, targets := buildRouteSet(cfg.Routes, cfg.LoadDelay)

	samplesCh := make(chan time.Duration, sampleBuffer(cfg.Sessions))
	var samples []time.Duration
	var samplesMu sync.Mutex
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for d := range samplesCh {
			samplesMu.Lock()
			samples = append(samples, d)
			samplesMu.Unlock()
		}
	}()

	var counters benchCounters
	var errCounts benchErrors
	var outcomes outcomeCounts
	var armed atomic.Bool

	observer := &navObserver{
		armed:    &armed,
		counters: &counters,
		outcomes: &outcomes,
		samples:  samplesCh,
	}

	routers := make([]*router.Router, cfg.Sessions)
	for i := range routers {
		rt, err := newSessionRouter(defs, observer, &counters)
		if err != nil {
			log.Fatalf("session %d: %v", i, err)
		}
		routers[i] = rt
	}
	defer func() {
		for _, rt := range routers {
			rt.Destroy()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	var before runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	beforeMetrics := readRuntimeMetrics()
	armed.Store(true)

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(cfg.Sessions)
	for i, rt := range routers {
		sessionID := i
		sessionRouter := rt
		go func() {
			defer wg.Done()
			runSession(ctx, sessionRouter, targets, cfg, &counters, &errCounts, sessionID)
		}()
	}

	wg.Wait()
	armed.Store(false)
	close(samplesCh)
	<-collectorDone

	elapsed := time.Since(start)

	var after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&after)
	afterMetrics := readRuntimeMetrics()

	samplesMu.Lock()
	latencies := append([]time.Duration(nil), samples...)
	samplesMu.Unlock()
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	report := buildReport(cfg, elapsed, latencies, &counters, &errCounts, &outcomes, before, after, beforeMetrics, afterMetrics)

	writeSummary(os.Stderr, report)
	if err := writeJSON(cfg.JSONOutput, report); err != nil {
		log.Fatalf("write json: %v", err)
	}
}

func sampleBuffer(sessions int) int {
	if sessions < 1 {
		return 1024
	}
	buf := sessions * 4
	if buf < 1024 {
		buf = 1024
	}
	return buf
}

func parseConfig() (benchConfig, error) {
	profileFlag := flag.String("profile", "standard", "profile: fast|standard|stress")
	sessionsFlag := flag.Int("sessions", -1, "number of concurrent router sessions")
	durationFlag := flag.String("duration", "", "benchmark duration, e.g. 30s")
	rpsFlag := flag.Float64("rps", -1, "target navigations/sec per session")
	routesFlag := flag.Int("routes", -1, "routes per session manifest")
	loadDelayFlag := flag.String("load-delay", "", "artificial page load latency, e.g. 1ms")
	overlapFlag := flag.Float64("overlap", -1, "fraction of navigations raced against a second one")
	maxProcsFlag := flag.Int("max-procs", -1, "GOMAXPROCS cap (0 to leave unchanged)")
	memLimitFlag := flag.String("mem-limit", "", "GOMEMLIMIT (e.g. 2GiB)")
	jsonFlag := flag.String("json", "-", "JSON output path ('-' for stdout)")
	flag.Parse()

	name := strings.ToLower(strings.TrimSpace(*profileFlag))
	if name == "" {
		name = "standard"
	}

	base, ok := profiles[name]
	if !ok {
		return benchConfig{}, fmt.Errorf("unknown profile %q", name)
	}

	cfg := benchConfig{
		Profile:       base.Name,
		Sessions:      base.Sessions,
		Duration:      base.Duration,
		RPS:           base.RPS,
		Routes:        base.Routes,
		LoadDelay:     base.LoadDelay,
		Overlap:       base.Overlap,
		MaxProcs:      base.MaxProcs,
		MemLimitBytes: base.MemLimitBytes,
		JSONOutput:    strings.TrimSpace(*jsonFlag),
	}

	if *sessionsFlag != -1 {
		cfg.Sessions = *sessionsFlag
	}
	if *durationFlag != "" {
		d, err := time.ParseDuration(*durationFlag)
		if err != nil {
			return benchConfig{}, fmt.Errorf("invalid -duration: %w", err)
		}
		cfg.Duration = d
	}
	if *rpsFlag != -1 {
		cfg.RPS = *rpsFlag
	}
	if *routesFlag != -1 {
		cfg.Routes = *routesFlag
	}
	if *loadDelayFlag != "" {
		d, err := time.ParseDuration(*loadDelayFlag)
		if err != nil {
			return benchConfig{}, fmt.Errorf("invalid -load-delay: %w", err)
		}
		cfg.LoadDelay = d
	}
	if *overlapFlag != -1 {
		cfg.Overlap = *overlapFlag
	}
	if *maxProcsFlag != -1 {
		cfg.MaxProcs = *maxProcsFlag
	}
	if *memLimitFlag != "" {
		limit, err := parseBytes(*memLimitFlag)
		if err != nil {
			return benchConfig{}, fmt.Errorf("invalid -mem-limit: %w", err)
		}
		cfg.MemLimitBytes = limit
	}
	if cfg.JSONOutput == "" {
		cfg.JSONOutput = "-"
	}

	if cfg.Sessions <= 0 {
		return benchConfig{}, errors.New("-sessions must be > 0")
	}
	if cfg.Duration <= 0 {
		return benchConfig{}, errors.New("-duration must be > 0")
	}
	if cfg.RPS <= 0 {
		return benchConfig{}, errors.New("-rps must be > 0")
	}
	if cfg.Routes < 4 {
		return benchConfig{}, errors.New("-routes must be >= 4")
	}
	if cfg.LoadDelay < 0 {
		return benchConfig{}, errors.New("-load-delay must be >= 0")
	}
	if cfg.Overlap < 0 || cfg.Overlap > 1 {
		return benchConfig{}, errors.New("-overlap must be within [0, 1]")
	}
	if cfg.MaxProcs < 0 {
		return benchConfig{}, errors.New("-max-procs must be >= 0")
	}
	if cfg.MemLimitBytes < 0 {
		return benchConfig{}, errors.New("-mem-limit must be >= 0")
	}

	return cfg, nil
}

func parseBytes(input string) (int64, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, errors.New("empty size")
	}

	var i int
	for i < len(s) {
		c := s[i]
		if (c >= '0' && c <= '9') || c == '.' {
			i++
			continue
		}
		break
	}
	if i == 0 {
		return 0, fmt.Errorf("invalid size %q", input)
	}

	numPart := strings.TrimSpace(s[:i])
	suffix := strings.ToLower(strings.TrimSpace(s[i:]))

	value, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, err
	}

	multiplier := float64(1)
	switch suffix {
	case "", "b":
		multiplier = 1
	case "kb":
		multiplier = 1e3
	case "mb":
		multiplier = 1e6
	case "gb":
		multiplier = 1e9
	case "tb":
		multiplier = 1e12
	case "kib":
		multiplier = 1024
	case "mib":
		multiplier = 1024 * 1024
	case "gib":
		multiplier = 1024 * 1024 * 1024
	case "tib":
		multiplier = 1024 * 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unknown size suffix %q", suffix)
	}

	bytes := value * multiplier
	if bytes < 0 {
		return 0, fmt.Errorf("invalid size %q", input)
	}

	return int64(bytes + 0.5), nil
}

// buildRouteSet produces a manifest-shaped route table and the targets
// navigated against it. Routes come in groups of four (static, param,
// nested param, catch-all); one in every eight targets matches nothing.
func buildRouteSet(n int, loadDelay time.Duration) ([]router.Def, []string) {
	load := pageLoader(loadDelay)

	groups := n / 4
	defs := make([]router.Def, 0, groups*4)
	targets := make([]string, 0, groups*5)
	for g := 0; g < groups; g++ {
		base := fmt.Sprintf("/g%d", g)
		defs = append(defs,
			router.Def{Path: base, Load: load},
			router.Def{Path: base + "/:id", Load: load},
			router.Def{Path: base + "/:id/edit", Load: load},
			router.Def{Path: base + "/files/*path", Load: load},
		)
		targets = append(targets,
			base,
			base+"/42",
			base+"/42/edit",
			base+"/files/a/b.css",
		)
		if g%8 == 0 {
			targets = append(targets, fmt.Sprintf("/missing/%d", g))
		}
	}
	return defs, targets
}

type benchPage struct{}

func pageLoader(delay time.Duration) router.LoadFunc {
	return func(ctx context.Context, params router.Params) (any, error) {
		if delay > 0 {
			time.Sleep(delay)
		}
		return &benchPage{}, nil
	}
}

type benchContainer struct{}

func newSessionRouter(defs []router.Def, observer router.Observer, counters *benchCounters) (*router.Router, error) {
	rt, err := router.New(&router.Config{
		Routes: defs,
		Mode:   router.MatchSpecificity,
		Mounter: router.MounterFunc(func(container, artifact any) (router.Teardown, error) {
			counters.mounts.Add(1)
			return func() { counters.teardowns.Add(1) }, nil
		}),
		Container: &benchContainer{},
		Observers: []router.Observer{observer},
		Logger:    slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError})),
	})
	if err != nil {
		return nil, err
	}
	if err := rt.Start(); err != nil {
		return nil, err
	}
	return rt, nil
}

// runSession drives one router at the target rate until ctx expires.
// Most iterations navigate; a sixteenth resolve without navigating and
// another sixteenth prefetch. A fraction of navigations race a
// concurrent one to exercise token supersession.
func runSession(
	ctx context.Context,
	rt *router.Router,
	targets []string,
	cfg benchConfig,
	counters *benchCounters,
	errCounts *benchErrors,
	sessionID int,
) {
	rng := rand.New(rand.NewSource(int64(sessionID) + 1))
	period := time.Duration(float64(time.Second) / cfg.RPS)

	var raceWG sync.WaitGroup
	defer raceWG.Wait()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		start := time.Now()
		target := targets[rng.Intn(len(targets))]

		switch {
		case i%16 == 15:
			counters.prefetches.Add(1)
			// Prefetch is best effort; a throttled one is not a failure.
			if err := rt.Prefetch(context.Background(), target); err != nil && !errors.Is(err, router.ErrPrefetchThrottled) {
				errCounts.prefetchFailures.Add(1)
				errCounts.totalErrors.Add(1)
			}

		case i%8 == 7:
			counters.resolves.Add(1)
			if _, err := rt.Resolve(target); err != nil {
				errCounts.resolveFailures.Add(1)
				errCounts.totalErrors.Add(1)
			}

		default:
			if cfg.Overlap > 0 && rng.Float64() < cfg.Overlap {
				racer := targets[rng.Intn(len(targets))]
				counters.navsStarted.Add(1)
				raceWG.Add(1)
				go func() {
					defer raceWG.Done()
					if err := rt.Navigate(context.Background(), racer); err != nil && !errors.Is(err, router.ErrSuperseded) {
						errCounts.navFailures.Add(1)
						errCounts.totalErrors.Add(1)
					}
				}()
			}

			counters.navsStarted.Add(1)
			if err := rt.Navigate(context.Background(), target); err != nil && !errors.Is(err, router.ErrSuperseded) {
				errCounts.navFailures.Add(1)
				errCounts.totalErrors.Add(1)
			}
		}

		elapsed := time.Since(start)
		if sleep := period - elapsed; sleep > 0 {
			timer := time.NewTimer(sleep)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}
}

type runtimeMetricsSnapshot struct {
	cpuTotalSeconds float64
	cpuGCSeconds    float64

	heapAllocsBytes   uint64
	heapAllocsObjects uint64
}

func readRuntimeMetrics() runtimeMetricsSnapshot {
	samples := []metrics.Sample{
		{Name: "/cpu/classes/total:cpu-seconds"},
		{Name: "/cpu/classes/gc/total:cpu-seconds"},
		{Name: "/gc/heap/allocs:bytes"},
		{Name: "/gc/heap/allocs:objects"},
	}
	metrics.Read(samples)

	var out runtimeMetricsSnapshot
	for _, s := range samples {
		switch s.Name {
		case "/cpu/classes/total:cpu-seconds":
			out.cpuTotalSeconds = s.Value.Float64()
		case "/cpu/classes/gc/total:cpu-seconds":
			out.cpuGCSeconds = s.Value.Float64()
		case "/gc/heap/allocs:bytes":
			out.heapAllocsBytes = s.Value.Uint64()
		case "/gc/heap/allocs:objects":
			out.heapAllocsObjects = s.Value.Uint64()
		}
	}
	return out
}

func cpuFraction(after, before runtimeMetricsSnapshot) float64 {
	total := after.cpuTotalSeconds - before.cpuTotalSeconds
	if total <= 0 {
		return 0
	}
	gc := after.cpuGCSeconds - before.cpuGCSeconds
	if gc < 0 {
		return 0
	}
	return gc / total
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func avgPause(after, before runtime.MemStats) time.Duration {
	gcCount := after.NumGC - before.NumGC
	if gcCount == 0 {
		return 0
	}
	return time.Duration((after.PauseTotalNs - before.PauseTotalNs) / uint64(gcCount))
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

type benchReport struct {
	Version    string         `json:"version"`
	Run        runInfo        `json:"run"`
	Workload   workloadInfo   `json:"workload"`
	LatencyMS  latencyInfo    `json:"latency_ms"`
	Throughput throughputInfo `json:"throughput"`
	GC         gcInfo         `json:"gc"`
	Routing    routingInfo    `json:"routing"`
	Errors     errorInfo      `json:"errors"`
}

type runInfo struct {
	Timestamp string `json:"timestamp"`
	Go        string `json:"go"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	CPUCount  int    `json:"cpu_count"`
	GitCommit string `json:"git_commit,omitempty"`
}

type workloadInfo struct {
	Profile       string  `json:"profile"`
	Sessions      int     `json:"sessions"`
	DurationMS    int64   `json:"duration_ms"`
	RPSPerSession float64 `json:"rps_per_session"`
	Routes        int     `json:"routes"`
	LoadDelayMS   float64 `json:"load_delay_ms"`
	Overlap       float64 `json:"overlap"`
	MaxProcs      int     `json:"max_procs"`
	MemLimitBytes int64   `json:"mem_limit_bytes"`
}

type latencyInfo struct {
	Min float64 `json:"min"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
	Max float64 `json:"max"`
}

type throughputInfo struct {
	NavsStarted       uint64  `json:"navs_started"`
	NavsSettled       uint64  `json:"navs_settled"`
	NavsPerSec        float64 `json:"navs_per_sec"`
	NavsPerSecSession float64 `json:"navs_per_sec_per_session"`
}

type gcInfo struct {
	AllocMB       float64 `json:"alloc_mb"`
	HeapLiveMB    float64 `json:"heap_live_mb"`
	NumGC         uint32  `json:"num_gc"`
	PauseTotalMS  float64 `json:"pause_total_ms"`
	PauseAvgMS    float64 `json:"pause_avg_ms"`
	GCCPUFraction float64 `json:"gc_cpu_fraction"`
	AllocsObjects uint64  `json:"allocs_objects"`
}

type routingInfo struct {
	Outcomes       map[string]uint64 `json:"outcomes"`
	Mounts         uint64            `json:"mounts"`
	Teardowns      uint64            `json:"teardowns"`
	Resolves       uint64            `json:"resolves"`
	Prefetches     uint64            `json:"prefetches"`
	SupersededRate float64           `json:"superseded_rate"`
}

type errorInfo struct {
	TotalErrors      uint64 `json:"total_errors"`
	NavFailures      uint64 `json:"nav_failures"`
	ResolveFailures  uint64 `json:"resolve_failures"`
	PrefetchFailures uint64 `json:"prefetch_failures"`
}

func buildReport(
	cfg benchConfig,
	elapsed time.Duration,
	latencies []time.Duration,
	counters *benchCounters,
	errCounts *benchErrors,
	outcomes *outcomeCounts,
	before runtime.MemStats,
	after runtime.MemStats,
	beforeMetrics runtimeMetricsSnapshot,
	afterMetrics runtimeMetricsSnapshot,
) benchReport {
	navsTotal := counters.navsSettled.Load()

	elapsedSeconds := math.Max(0.001, elapsed.Seconds())
	navsPerSec := float64(navsTotal) / elapsedSeconds
	navsPerSecSession := navsPerSec / float64(cfg.Sessions)

	latency := latencyInfo{}
	if len(latencies) > 0 {
		latency = latencyInfo{
			Min: ms(latencies[0]),
			P50: ms(percentile(latencies, 0.50)),
			P95: ms(percentile(latencies, 0.95)),
			P99: ms(percentile(latencies, 0.99)),
			Max: ms(latencies[len(latencies)-1]),
		}
	}

	supersededRate := 0.0
	if navsTotal > 0 {
		supersededRate = float64(outcomes.get(router.OutcomeSuperseded)) / float64(navsTotal)
	}

	pauseTotal := time.Duration(after.PauseTotalNs - before.PauseTotalNs)
	pauseAvg := avgPause(after, before)

	return benchReport{
		Version: "1",
		Run: runInfo{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Go:        runtime.Version(),
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			CPUCount:  runtime.NumCPU(),
			GitCommit: gitCommit(),
		},
		Workload: workloadInfo{
			Profile:       cfg.Profile,
			Sessions:      cfg.Sessions,
			DurationMS:    cfg.Duration.Milliseconds(),
			RPSPerSession: cfg.RPS,
			Routes:        cfg.Routes,
			LoadDelayMS:   ms(cfg.LoadDelay),
			Overlap:       cfg.Overlap,
			MaxProcs:      cfg.MaxProcs,
			MemLimitBytes: cfg.MemLimitBytes,
		},
		LatencyMS: latency,
		Throughput: throughputInfo{
			NavsStarted:       counters.navsStarted.Load(),
			NavsSettled:       navsTotal,
			NavsPerSec:        navsPerSec,
			NavsPerSecSession: navsPerSecSession,
		},
		GC: gcInfo{
			AllocMB:       float64(after.TotalAlloc-before.TotalAlloc) / (1024 * 1024),
			HeapLiveMB:    float64(after.HeapAlloc) / (1024 * 1024),
			NumGC:         after.NumGC - before.NumGC,
			PauseTotalMS:  ms(pauseTotal),
			PauseAvgMS:    ms(pauseAvg),
			GCCPUFraction: cpuFraction(afterMetrics, beforeMetrics),
			AllocsObjects: afterMetrics.heapAllocsObjects - beforeMetrics.heapAllocsObjects,
		},
		Routing: routingInfo{
			Outcomes:       outcomes.snapshot(),
			Mounts:         counters.mounts.Load(),
			Teardowns:      counters.teardowns.Load(),
			Resolves:       counters.resolves.Load(),
			Prefetches:     counters.prefetches.Load(),
			SupersededRate: supersededRate,
		},
		Errors: errorInfo{
			TotalErrors:      errCounts.totalErrors.Load(),
			NavFailures:      errCounts.navFailures.Load(),
			ResolveFailures:  errCounts.resolveFailures.Load(),
			PrefetchFailures: errCounts.prefetchFailures.Load(),
		},
	}
}

func writeSummary(w io.Writer, report benchReport) {
	fmt.Fprintln(w, "=== Zenith Router Benchmark ===")
	fmt.Fprintf(w, "Profile: %s\n", report.Workload.Profile)
	fmt.Fprintf(w, "Sessions: %d\n", report.Workload.Sessions)
	fmt.Fprintf(w, "Duration: %s\n", time.Duration(report.Workload.DurationMS)*time.Millisecond)
	fmt.Fprintf(w, "Target per-session rate: %.2f navs/s\n", report.Workload.RPSPerSession)
	fmt.Fprintf(w, "Routes per manifest: %d\n", report.Workload.Routes)
	fmt.Fprintf(w, "Load delay: %.2f ms\n", report.Workload.LoadDelayMS)
	fmt.Fprintf(w, "Overlap: %.2f\n", report.Workload.Overlap)
	if report.Workload.MaxProcs > 0 {
		fmt.Fprintf(w, "GOMAXPROCS cap: %d\n", report.Workload.MaxProcs)
	}
	if report.Workload.MemLimitBytes > 0 {
		fmt.Fprintf(w, "GOMEMLIMIT cap: %.2f GiB\n", float64(report.Workload.MemLimitBytes)/float64(gib))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Navigations: %d started, %d settled\n", report.Throughput.NavsStarted, report.Throughput.NavsSettled)
	fmt.Fprintf(w, "Throughput: %.1f navs/s (%.2f per session)\n", report.Throughput.NavsPerSec, report.Throughput.NavsPerSecSession)
	fmt.Fprintf(w, "Errors: %d\n", report.Errors.TotalErrors)
	fmt.Fprintln(w)

	if report.LatencyMS.Max == 0 {
		fmt.Fprintln(w, "No latency samples recorded.")
	} else {
		fmt.Fprintln(w, "Settle latency (navigate -> commit/supersede):")
		fmt.Fprintf(w, "  min: %.2f ms\n", report.LatencyMS.Min)
		fmt.Fprintf(w, "  p50: %.2f ms\n", report.LatencyMS.P50)
		fmt.Fprintf(w, "  p95: %.2f ms\n", report.LatencyMS.P95)
		fmt.Fprintf(w, "  p99: %.2f ms\n", report.LatencyMS.P99)
		fmt.Fprintf(w, "  max: %.2f ms\n", report.LatencyMS.Max)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Routing:")
	for name, count := range report.Routing.Outcomes {
		fmt.Fprintf(w, "  %s: %d\n", name, count)
	}
	fmt.Fprintf(w, "  mounts: %d (teardowns: %d)\n", report.Routing.Mounts, report.Routing.Teardowns)
	fmt.Fprintf(w, "  resolves: %d, prefetches: %d\n", report.Routing.Resolves, report.Routing.Prefetches)
	fmt.Fprintf(w, "  superseded rate: %.2f%%\n", report.Routing.SupersededRate*100)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Go runtime / GC (process-wide):")
	fmt.Fprintf(w, "  alloc:     %.2f MB\n", report.GC.AllocMB)
	fmt.Fprintf(w, "  heap_live: %.2f MB\n", report.GC.HeapLiveMB)
	fmt.Fprintf(w, "  num_gc:    %d\n", report.GC.NumGC)
	fmt.Fprintf(w, "  gc_pause:  %.2f ms (total)\n", report.GC.PauseTotalMS)
	fmt.Fprintf(w, "  gc_pause:  %.2f ms (avg)\n", report.GC.PauseAvgMS)
	fmt.Fprintf(w, "  gc_cpu:    %.2f%%\n", report.GC.GCCPUFraction*100)
}

func writeJSON(path string, report benchReport) error {
	var out io.Writer
	if path == "-" {
		out = os.Stdout
	} else {
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

func gitCommit() string {
	if val := strings.TrimSpace(os.Getenv("ZENITH_GIT_COMMIT")); val != "" {
		return val
	}
	if val := strings.TrimSpace(os.Getenv("GIT_COMMIT")); val != "" {
		return val
	}
	cmd := exec.Command("git", "rev-parse", "HEAD")
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
