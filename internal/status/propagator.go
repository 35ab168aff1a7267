package status

import (
	"context"
	"log"
	"math/rand"
	"time"

	"factory-floor-backend/config"
	"factory-floor-backend/internal/model"
	"factory-floor-backend/internal/store"
)

// Broadcaster pushes a status change to live subscribers.
type Broadcaster interface {
	MachineStatusChanged(m *model.Machine)
}

// Alerter dispatches a machine failure to the notification pipeline.
type Alerter interface {
	Dispatch(machineID string)
}

// Service is the status-change propagator: every status mutation, explicit
// or simulated, is audited and broadcast through it. It also owns the
// background simulator that randomly flips one machine's status per tick.
type Service struct {
	cfg         *config.Config
	store       store.Store
	broadcaster Broadcaster
	alerter     Alerter
}

// NewService creates the propagator. alerter may be nil when failure alerts
// are not configured.
func NewService(cfg *config.Config, s store.Store, b Broadcaster, a Alerter) *Service {
	return &Service{
		cfg:         cfg,
		store:       s,
		broadcaster: b,
		alerter:     a,
	}
}

// UpdateStatus mutates a machine's status, appends the audit row and
// broadcasts the updated machine joined with its production line. A FAILURE
// transition additionally dispatches a failure alert.
func (s *Service) UpdateStatus(ctx context.Context, machineID, newStatus string) (*model.Machine, error) {
	machine, err := s.store.UpdateMachineStatus(ctx, machineID, newStatus)
	if err != nil {
		return nil, err
	}

	s.broadcaster.MachineStatusChanged(machine)

	if machine.Status == model.StatusFailure && s.alerter != nil {
		s.alerter.Dispatch(machine.ID)
	}
	return machine, nil
}

// Run drives the simulator on a single repeating timer until the context is
// cancelled. This is a coarse global tick over a freshly-fetched machine
// list, not per-machine scheduling.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Simulator.Enabled {
		log.Println("Status simulator is disabled. Not starting.")
		return
	}
	log.Printf("Starting status simulator (interval %s)...", s.cfg.Simulator.Interval)

	timer := time.NewTimer(s.cfg.Simulator.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Status simulator shutting down.")
			return
		case <-timer.C:
			s.SimulateOnce(ctx)
			timer.Reset(s.cfg.Simulator.Interval)
		}
	}
}

// SimulateOnce flips one uniformly-random machine to one uniformly-random
// status. The chosen status may equal the current one; such a no-op
// transition is valid and still produces an audit row.
func (s *Service) SimulateOnce(ctx context.Context) {
	machines, err := s.store.ListMachines(ctx)
	if err != nil {
		log.Printf("simulator: failed to list machines: %v", err)
		return
	}
	if len(machines) == 0 {
		return
	}

	machine := machines[rand.Intn(len(machines))]
	newStatus := model.MachineStatuses[rand.Intn(len(model.MachineStatuses))]

	if _, err := s.UpdateStatus(ctx, machine.ID, newStatus); err != nil {
		log.Printf("simulator: failed to update machine %s: %v", machine.ID, err)
	}
}
