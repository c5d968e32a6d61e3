package bambu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"bambu.printjobs/internal/core/domain"
	"bambu.printjobs/internal/core/logger"
)

var ErrUnsupportedService = errors.New("unsupported service")

// Publisher sends one MQTT message.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// Dispatcher handles image.press itself by sending a print command straight
// to the printer, bypassing the host platform.
type Dispatcher struct {
	cache     *Cache
	publisher Publisher
	serial    string
}

func NewDispatcher(cache *Cache, publisher Publisher, serial string) *Dispatcher {
	return &Dispatcher{cache: cache, publisher: publisher, serial: serial}
}

// CallService implements ports.ServiceCaller.
func (d *Dispatcher) CallService(ctx context.Context, svcDomain, service string, data map[string]any) error {
	if svcDomain != domain.PressDomain || service != domain.PressService {
		return fmt.Errorf("%w: %s.%s", ErrUnsupportedService, svcDomain, service)
	}

	entityID, _ := data["entity_id"].(string)
	_, slug, ok := strings.Cut(entityID, domain.PrintJobInfix)
	if !ok || slug == "" {
		return fmt.Errorf("entity %q is not a print job", entityID)
	}

	job, err := d.cache.Resolve(slug)
	if err != nil {
		return err
	}

	gcode, err := d.cache.GcodeFile(job)
	if err != nil {
		return fmt.Errorf("job %s: %w", job, err)
	}

	payload, err := json.Marshal(NewPrintCommand(job, gcode))
	if err != nil {
		return fmt.Errorf("failed to encode print command: %w", err)
	}

	logger.DebugContext(ctx, "Starting print", "job", job, "gcode", gcode, "serial", d.serial)
	return d.publisher.Publish(ctx, requestTopic(d.serial), payload)
}
