package main

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/tagbridge-protocol/tagbridge-go/pkg/tag"
)

// newSimCatalog builds a simulated PLC catalog resembling a small
// packaging line: a conveyor, an oven, a main drive and some global
// program tags. The mix of scalar, struct, array, read-only and
// date/time tags exercises every branch of the type mapper and the
// address-space builder.
func newSimCatalog() *tag.SimProvider {
	p := tag.NewSimProvider()

	// Line1 structure tags. The container paths themselves are
	// reported by the PLC alongside their members, as TwinCAT and
	// Logix catalogs do.
	p.AddTag("Line1", tag.Descriptor{
		TypeName: "FB_Line",
		Comment:  "Packaging line 1",
		Children: []tag.Descriptor{
			{TypeName: "FB_Conveyor"},
			{TypeName: "FB_Oven"},
		},
	}, nil)

	p.AddTag("Line1.Conveyor", tag.Descriptor{
		TypeName: "FB_Conveyor",
		Children: []tag.Descriptor{
			{TypeName: "BOOL"},
			{TypeName: "REAL"},
		},
	}, nil)
	p.AddTag("Line1.Conveyor.Running", tag.Descriptor{TypeName: "BOOL"}, false)
	p.AddTag("Line1.Conveyor.Speed", tag.Descriptor{
		TypeName: "REAL",
		Comment:  "Belt speed in m/s",
	}, float32(0))
	p.AddTag("Line1.Conveyor.Fault", tag.Descriptor{
		TypeName:   "BOOL",
		IsReadOnly: true,
	}, false)

	p.AddTag("Line1.Oven", tag.Descriptor{
		TypeName: "FB_Oven",
		Children: []tag.Descriptor{
			{TypeName: "REAL"},
			{TypeName: "REAL"},
		},
	}, nil)
	p.AddTag("Line1.Oven.Temperature", tag.Descriptor{
		TypeName:   "REAL",
		IsReadOnly: true,
		Comment:    "Chamber temperature in °C",
	}, float32(21.5))
	p.AddTag("Line1.Oven.Setpoint", tag.Descriptor{TypeName: "REAL"}, float32(180))

	// Main drive.
	p.AddTag("Motor", tag.Descriptor{
		TypeName: "FB_Drive",
		Children: []tag.Descriptor{
			{TypeName: "DINT"},
			{TypeName: "REAL"},
		},
	}, nil)
	p.AddTag("Motor.Speed", tag.Descriptor{
		TypeName: "DINT",
		Comment:  "Commanded speed in rpm",
	}, int32(0))
	p.AddTag("Motor.Current", tag.Descriptor{
		TypeName:   "REAL",
		IsReadOnly: true,
	}, float32(0))
	p.AddTag("Motor.RunHours", tag.Descriptor{
		TypeName:     "MyTime",
		BaseTypeName: "TIME",
		IsReadOnly:   true,
	}, uint32(0))

	// Global program tags.
	p.AddTag("Recipe.Name", tag.Descriptor{TypeName: "STRING"}, "default")
	p.AddTag("Recipe.BatchSize", tag.Descriptor{TypeName: "INT"}, int16(100))
	p.AddTag("Recipe.Steps", tag.Descriptor{
		TypeName: "UDINT",
		IsArray:  true,
	}, []uint32{10, 20, 30})
	p.AddTag("Heartbeat", tag.Descriptor{
		TypeName:   "UDINT",
		IsReadOnly: true,
	}, uint32(0))

	return p
}

// runSimulation pushes device-originated changes into the catalog at
// the given interval until ctx is cancelled.
func runSimulation(ctx context.Context, p *tag.SimProvider, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		heartbeat uint32
		runHours  uint32
		temp      = 21.5
	)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			heartbeat++
			runHours += uint32(interval.Milliseconds())
			p.Push("Heartbeat", heartbeat)
			p.Push("Motor.RunHours", runHours)

			// Temperature drifts toward the setpoint with some noise.
			setpoint := 180.0
			if v, err := p.Read(ctx, "Line1.Oven.Setpoint"); err == nil {
				if f, ok := v.(float32); ok {
					setpoint = float64(f)
				}
			}
			temp += (setpoint-temp)*0.1 + rand.Float64() - 0.5
			p.Push("Line1.Oven.Temperature", float32(temp))

			// Motor current tracks commanded speed.
			if v, err := p.Read(ctx, "Motor.Speed"); err == nil {
				if speed, ok := v.(int32); ok && speed != 0 {
					current := 0.8 + math.Abs(float64(speed))*0.002
					p.Push("Motor.Current", float32(current))
					p.Push("Line1.Conveyor.Running", true)
				} else {
					p.Push("Motor.Current", float32(0))
					p.Push("Line1.Conveyor.Running", false)
				}
			}
		}
	}
}
