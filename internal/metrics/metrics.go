package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Simple Prometheus-style metrics for the job service.
// This is intentionally minimal and in-memory only.

var (
	mu             sync.RWMutex
	requestsTotal  = make(map[reqKey]int64)
	latencyMsSum   = make(map[latKey]int64)
	latencyMsCount = make(map[latKey]int64)

	jobsCreated       = make(map[string]int64)
	statusTransitions = make(map[transKey]int64)
	terminalCoercions int64
)

type reqKey struct {
	Method string
	Path   string
	Status int
}

type latKey struct {
	Method string
	Path   string
}

type transKey struct {
	From int64
	To   int64
}

// RecordRequest increments the request counter and records latency.
func RecordRequest(method, path string, status int, latencyMs int64) {
	mu.Lock()
	defer mu.Unlock()

	rk := reqKey{Method: method, Path: path, Status: status}
	requestsTotal[rk]++

	lk := latKey{Method: method, Path: path}
	latencyMsSum[lk] += latencyMs
	latencyMsCount[lk]++
}

// RecordJobCreated increments the per-type job creation counter.
func RecordJobCreated(jobType string) {
	mu.Lock()
	defer mu.Unlock()
	jobsCreated[jobType]++
}

// RecordStatusTransition counts a committed status change on a job.
func RecordStatusTransition(from, to int64) {
	if from == to {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	statusTransitions[transKey{From: from, To: to}]++
}

// RecordTerminalCoercion counts updates whose incoming active status
// was discarded because the job was already terminal.
func RecordTerminalCoercion() {
	mu.Lock()
	defer mu.Unlock()
	terminalCoercions++
}

// Reset clears all counters. Test helper.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	requestsTotal = make(map[reqKey]int64)
	latencyMsSum = make(map[latKey]int64)
	latencyMsCount = make(map[latKey]int64)
	jobsCreated = make(map[string]int64)
	statusTransitions = make(map[transKey]int64)
	terminalCoercions = 0
}

// Export returns Prometheus-style metrics text.
func Export() string {
	mu.RLock()
	defer mu.RUnlock()

	var b strings.Builder

	b.WriteString("# HELP bindery_http_requests_total Total HTTP requests\n")
	b.WriteString("# TYPE bindery_http_requests_total counter\n")

	// Sort keys for stable output
	var reqKeys []reqKey
	for k := range requestsTotal {
		reqKeys = append(reqKeys, k)
	}
	sort.Slice(reqKeys, func(i, j int) bool {
		if reqKeys[i].Method != reqKeys[j].Method {
			return reqKeys[i].Method < reqKeys[j].Method
		}
		if reqKeys[i].Path != reqKeys[j].Path {
			return reqKeys[i].Path < reqKeys[j].Path
		}
		return reqKeys[i].Status < reqKeys[j].Status
	})

	for _, k := range reqKeys {
		v := requestsTotal[k]
		fmt.Fprintf(&b, "bindery_http_requests_total{method=\"%s\",path=\"%s\",status=\"%d\"} %d\n",
			k.Method, k.Path, k.Status, v)
	}

	b.WriteString("# HELP bindery_http_request_duration_ms_sum Total request duration in milliseconds\n")
	b.WriteString("# TYPE bindery_http_request_duration_ms_sum counter\n")
	b.WriteString("# HELP bindery_http_request_duration_ms_count Request count for latency metric\n")
	b.WriteString("# TYPE bindery_http_request_duration_ms_count counter\n")

	var latKeys []latKey
	for k := range latencyMsSum {
		latKeys = append(latKeys, k)
	}
	sort.Slice(latKeys, func(i, j int) bool {
		if latKeys[i].Method != latKeys[j].Method {
			return latKeys[i].Method < latKeys[j].Method
		}
		return latKeys[i].Path < latKeys[j].Path
	})

	for _, k := range latKeys {
		sum := latencyMsSum[k]
		cnt := latencyMsCount[k]
		fmt.Fprintf(&b, "bindery_http_request_duration_ms_sum{method=\"%s\",path=\"%s\"} %d\n",
			k.Method, k.Path, sum)
		fmt.Fprintf(&b, "bindery_http_request_duration_ms_count{method=\"%s\",path=\"%s\"} %d\n",
			k.Method, k.Path, cnt)
	}

	b.WriteString("# HELP bindery_jobs_created_total Total jobs created by job type\n")
	b.WriteString("# TYPE bindery_jobs_created_total counter\n")

	var jobTypes []string
	for t := range jobsCreated {
		jobTypes = append(jobTypes, t)
	}
	sort.Strings(jobTypes)
	for _, t := range jobTypes {
		fmt.Fprintf(&b, "bindery_jobs_created_total{job_type=\"%s\"} %d\n", t, jobsCreated[t])
	}

	b.WriteString("# HELP bindery_job_status_transitions_total Committed job status transitions\n")
	b.WriteString("# TYPE bindery_job_status_transitions_total counter\n")

	var transKeys []transKey
	for k := range statusTransitions {
		transKeys = append(transKeys, k)
	}
	sort.Slice(transKeys, func(i, j int) bool {
		if transKeys[i].From != transKeys[j].From {
			return transKeys[i].From < transKeys[j].From
		}
		return transKeys[i].To < transKeys[j].To
	})
	for _, k := range transKeys {
		fmt.Fprintf(&b, "bindery_job_status_transitions_total{from=\"%d\",to=\"%d\"} %d\n",
			k.From, k.To, statusTransitions[k])
	}

	b.WriteString("# HELP bindery_terminal_coercions_total Updates whose active status was discarded by the terminal-state lock\n")
	b.WriteString("# TYPE bindery_terminal_coercions_total counter\n")
	fmt.Fprintf(&b, "bindery_terminal_coercions_total %d\n", terminalCoercions)

	return b.String()
}
