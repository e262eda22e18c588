package analyze

import (
	"github.com/idptools/loopscan/pkg/loop"
)

type LoopReport struct {
	Key       string
	Client    string
	Useragent string
	loop.Run
}

func (r LoopReport) Bytes() uint64 {
	var total uint64
	for _, e := range r.Events {
		total += e.Bytes
	}
	return total
}

// DetectLoops runs loop detection on every sequence of every key, keys in
// order of first appearance and sequences in time order.
func (a *Analyzer) DetectLoops() []LoopReport {
	set := a.FindSequences()
	var reports []LoopReport
	for _, key := range set.Keys() {
		for _, seq := range set.Get(key) {
			first := seq.Events()[0]
			for _, run := range a.detector.Detect(seq) {
				reports = append(reports, LoopReport{
					Key:       key,
					Client:    first.Client,
					Useragent: first.Useragent,
					Run:       run,
				})
			}
		}
	}
	return reports
}

type DeviceReport struct {
	Client string
	// "<client>:<user agent>" in order of first appearance
	Devices []string
}

// Devices lists clients whose sequences came from more than one user agent.
func (a *Analyzer) Devices() []DeviceReport {
	set := a.FindSequences()
	var order []string
	devices := make(map[string][]string)
	seen := make(map[string]struct{})
	for _, key := range set.Keys() {
		for _, seq := range set.Get(key) {
			first := seq.Events()[0]
			device := first.Client + ":" + first.Useragent
			if _, ok := seen[device]; ok {
				continue
			}
			seen[device] = struct{}{}
			if _, ok := devices[first.Client]; !ok {
				order = append(order, first.Client)
			}
			devices[first.Client] = append(devices[first.Client], device)
		}
	}

	var reports []DeviceReport
	for _, client := range order {
		if len(devices[client]) > 1 {
			reports = append(reports, DeviceReport{Client: client, Devices: devices[client]})
		}
	}
	return reports
}
