package processors

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Chain представляет цепочку процессоров
type Chain struct {
	processors []Processor
}

// NewChain создает новую цепочку процессоров
func NewChain(processors ...Processor) *Chain {
	return &Chain{
		processors: processors,
	}
}

// Process выполняет все процессоры в цепочке последовательно
func (c *Chain) Process(ctx context.Context, data [][]string, columns []string) ([][]string, error) {
	if len(c.processors) == 0 {
		return data, nil
	}

	result := data
	for i, proc := range c.processors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		before := len(result)
		var err error
		result, err = proc.Process(ctx, result, columns)
		if err != nil {
			return nil, fmt.Errorf("processor %d (%s) failed: %w", i, proc.Name(), err)
		}

		log.Debug().
			Str("processor", proc.Name()).
			Int("rows_in", before).
			Int("rows_out", len(result)).
			Msg("cleaning step done")
	}

	return result, nil
}

// Add добавляет процессор в цепочку
func (c *Chain) Add(processor Processor) {
	c.processors = append(c.processors, processor)
}

// Len возвращает количество процессоров в цепочке
func (c *Chain) Len() int {
	return len(c.processors)
}

// Names возвращает имена процессоров в порядке выполнения
func (c *Chain) Names() []string {
	names := make([]string, len(c.processors))
	for i, p := range c.processors {
		names[i] = p.Name()
	}
	return names
}
