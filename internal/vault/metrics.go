package vault

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	opSave   = "save"
	opLoad   = "load"
	opForget = "forget"

	resultOK          = "ok"
	resultNotFound    = "not_found"
	resultEncodeError = "encode_error"
	resultDecodeError = "decode_error"
	resultStoreError  = "store_error"
)

// Metrics counts vault operations by outcome
type Metrics struct {
	operations *prometheus.CounterVec
}

// NewMetrics registers the vault collectors with reg, reusing them if they
// are already registered
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "userinfo",
		Subsystem: "archive",
		Name:      "operations_total",
		Help:      "Archive operations on additional user info, by operation and result.",
	}, []string{"operation", "result"})

	if err := reg.Register(operations); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, err
		}
		operations = already.ExistingCollector.(*prometheus.CounterVec)
	}

	return &Metrics{operations: operations}, nil
}

func (m *Metrics) observe(operation, result string) {
	m.operations.WithLabelValues(operation, result).Inc()
}
