// File: bridge/state.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Persistent state is a flat JSON document:
//
//	{"osc_address":"127.0.0.1","osc_port":9009,"params":{"channel_1":0.5}}

package bridge

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/momentics/spaceradio/api"
	"github.com/momentics/spaceradio/param"
)

// Persisted field names.
const (
	KeyAddress = "osc_address"
	KeyPort    = "osc_port"
	KeyParams  = "params"
)

// SaveState serializes the endpoint and every control value.
func (b *Bridge) SaveState() ([]byte, error) {
	e := b.endpoint.Load()
	doc := []byte(`{}`)
	var err error
	if doc, err = sjson.SetBytes(doc, KeyAddress, e.Address); err != nil {
		return nil, fmt.Errorf("save %s: %w", KeyAddress, err)
	}
	if doc, err = sjson.SetBytes(doc, KeyPort, e.Port); err != nil {
		return nil, fmt.Errorf("save %s: %w", KeyPort, err)
	}
	b.bank.Each(func(p *param.FloatParam) {
		if err != nil {
			return
		}
		doc, err = sjson.SetBytes(doc, KeyParams+"."+p.ID(), p.Value())
	})
	if err != nil {
		return nil, fmt.Errorf("save params: %w", err)
	}
	return doc, nil
}

// RestoreState applies a document produced by SaveState. Missing fields
// keep their current values. Restored controls are marked changed, so the
// next block resends them.
func (b *Bridge) RestoreState(data []byte) error {
	if !gjson.ValidBytes(data) {
		return api.NewError(api.ErrCodeInvalidArgument, "state is not valid JSON")
	}
	e := b.endpoint.Load()
	if v := gjson.GetBytes(data, KeyAddress); v.Exists() {
		if v.Type != gjson.String {
			return api.NewError(api.ErrCodeInvalidArgument, "osc_address must be a string").
				WithContext("value", v.Raw)
		}
		e.Address = v.String()
	}
	if v := gjson.GetBytes(data, KeyPort); v.Exists() {
		port := v.Int()
		if v.Type != gjson.Number || port < 0 || port > 65535 {
			return api.NewError(api.ErrCodeInvalidArgument, "osc_port out of range").
				WithContext("value", v.Raw)
		}
		e.Port = uint16(port)
	}
	if err := b.endpoint.Store(e); err != nil {
		return err
	}

	var unknown []string
	gjson.GetBytes(data, KeyParams).ForEach(func(key, value gjson.Result) bool {
		p, ok := b.bank.ByID(key.String())
		if !ok || value.Type != gjson.Number {
			unknown = append(unknown, key.String())
			return true
		}
		p.Set(float32(value.Float()))
		return true
	})
	if len(unknown) > 0 {
		b.log.WithField("ignored", unknown).Warn("Unknown params in saved state")
	}
	return nil
}
