package domain

// ServiceSpec describes a bookable service. Immutable reference data loaded
// from configuration and looked up by identifier when computing slot length.
type ServiceSpec struct {
	ID              string
	Name            string
	Price           float64
	DurationMinutes int
}

// ServiceCatalog набор услуг с поиском по идентификатору
type ServiceCatalog struct {
	services []ServiceSpec
	byID     map[string]ServiceSpec
}

// NewServiceCatalog создает каталог услуг
func NewServiceCatalog(services []ServiceSpec) *ServiceCatalog {
	byID := make(map[string]ServiceSpec, len(services))
	for _, s := range services {
		byID[s.ID] = s
	}
	return &ServiceCatalog{
		services: services,
		byID:     byID,
	}
}

// Get возвращает услугу по идентификатору
func (c *ServiceCatalog) Get(id string) (ServiceSpec, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// All возвращает все услуги в порядке конфигурации
func (c *ServiceCatalog) All() []ServiceSpec {
	return c.services
}
