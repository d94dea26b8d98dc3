package clicksign

import (
	"context"
	"strconv"
)

// ConfigurationService reads the signature configurations of the account.
type ConfigurationService struct {
	caller *caller
}

// List returns the configuration summaries in service order.
func (s *ConfigurationService) List(ctx context.Context) (*ConfigList, error) {
	v, err := s.caller.do(ctx, call{
		resource: ResourceConfigList,
		id:       "configurations",
		payload:  map[string]any{},
		result:   ConfigListSchema,
	})
	if err != nil {
		return nil, err
	}
	return decodeConfigList(v), nil
}

// Get returns the detail of one configuration.
func (s *ConfigurationService) Get(ctx context.Context, configID int64) (*ConfigDetail, error) {
	v, err := s.caller.do(ctx, call{
		resource: ResourceConfig,
		id:       "config " + strconv.FormatInt(configID, 10),
		payload:  map[string]any{"config_id": configID},
		result:   ConfigDetailSchema,
	})
	if err != nil {
		return nil, err
	}
	return decodeConfigDetail(v), nil
}
