// Package runtime manages the lifecycle of the long running services of a
// slasher node.
package runtime

import (
	"reflect"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "registry")

// Service is a long running component of the slasher node.
type Service interface {
	// Start spawns any goroutines required by the service.
	Start()
	// Stop terminates all goroutines belonging to the service,
	// blocking until they are all terminated.
	Stop() error
	// Status returns error if the service is not considered healthy.
	Status() error
}

// ServiceRegistry keeps one instance per service type so that services
// depending on each other share the same references. Services start in
// registration order and stop in reverse.
type ServiceRegistry struct {
	services map[reflect.Type]Service
	order    []reflect.Type
}

// NewServiceRegistry returns an empty registry.
func NewServiceRegistry() *ServiceRegistry {
	return &ServiceRegistry{
		services: make(map[reflect.Type]Service),
	}
}

// StartAll starts each service in its own goroutine, in order of registration.
func (s *ServiceRegistry) StartAll() {
	log.WithField("count", len(s.order)).Debug("Starting services")
	for _, kind := range s.order {
		log.WithField("service", kind.String()).Debug("Starting service")
		go s.services[kind].Start()
	}
}

// StopAll stops every service in reverse order of registration. Every
// service is asked to stop even when an earlier one fails; the first
// failure is returned.
func (s *ServiceRegistry) StopAll() error {
	var firstErr error
	for i := len(s.order) - 1; i >= 0; i-- {
		kind := s.order[i]
		if err := s.services[kind].Stop(); err != nil {
			log.WithError(err).WithField("service", kind.String()).Error("Could not stop service")
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "could not stop %v", kind)
			}
		}
	}
	return firstErr
}

// Statuses returns the health of every registered service keyed by the
// service type name, e.g. "*engine.Service".
func (s *ServiceRegistry) Statuses() map[string]error {
	m := make(map[string]error, len(s.order))
	for _, kind := range s.order {
		m[kind.String()] = s.services[kind].Status()
	}
	return m
}

// Healthy returns the status error of the first unhealthy service in
// registration order, or nil.
func (s *ServiceRegistry) Healthy() error {
	for _, kind := range s.order {
		if err := s.services[kind].Status(); err != nil {
			return errors.Wrapf(err, "%v is unhealthy", kind)
		}
	}
	return nil
}

// RegisterService adds a running service to the registry. Only one service
// of each type may be registered.
func (s *ServiceRegistry) RegisterService(service Service) error {
	kind := reflect.TypeOf(service)
	if _, exists := s.services[kind]; exists {
		return errors.Errorf("service already exists: %v", kind)
	}
	s.services[kind] = service
	s.order = append(s.order, kind)
	return nil
}

// FetchService sets the value behind the service pointer to the registered
// service of the same type.
func (s *ServiceRegistry) FetchService(service interface{}) error {
	if reflect.TypeOf(service).Kind() != reflect.Ptr {
		return errors.Errorf("input must be of pointer type, received value type instead: %T", service)
	}
	element := reflect.ValueOf(service).Elem()
	running, ok := s.services[element.Type()]
	if !ok {
		return errors.Errorf("unknown service: %T", service)
	}
	element.Set(reflect.ValueOf(running))
	return nil
}
