package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/d60-Lab/staffing-ats/internal/model"
)

func TestResolveEntityStatus(t *testing.T) {
	cases := []struct {
		name     string
		target   int64
		siblings []int64
		want     int64
	}{
		{"placed wins unconditionally", model.StatusPlaced, []int64{model.StatusActive, model.StatusSendover}, model.StatusPlaced},
		{"active target beats sibling sendover", model.StatusActive, []int64{model.StatusSendover}, model.StatusActive},
		{"sendover target loses to sibling active", model.StatusSendover, []int64{model.StatusActive}, model.StatusActive},
		{"declined target with sibling sendover", model.StatusDeclined, []int64{model.StatusSendover}, model.StatusSendover},
		{"declined target alone keeps target", model.StatusDeclined, nil, model.StatusDeclined},
		{"declined siblings are excluded", model.StatusNoOffer, []int64{model.StatusDeclined, model.StatusSendoverNoOffer}, model.StatusNoOffer},
		{"sibling placed wins", model.StatusActive, []int64{model.StatusPlaced}, model.StatusPlaced},
		{"no siblings keeps target", model.StatusSendover, nil, model.StatusSendover},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveEntityStatus(tc.target, tc.siblings))
		})
	}
}

// 双 sendout（一个 Active 一个 Sendover）下与调用顺序无关，聚合始终为 Active
func TestResolveEntityStatus_OrderIndependent(t *testing.T) {
	a := ResolveEntityStatus(model.StatusActive, []int64{model.StatusSendover})
	b := ResolveEntityStatus(model.StatusSendover, []int64{model.StatusActive})
	assert.Equal(t, model.StatusActive, a)
	assert.Equal(t, model.StatusActive, b)
}

func TestMapEntityStatus(t *testing.T) {
	assert.Equal(t, model.EntityStatusPlaced, MapEntityStatus(model.StatusPlaced))
	assert.Equal(t, model.EntityStatusSendover, MapEntityStatus(model.StatusSendover))
	assert.Equal(t, model.EntityStatusOngoing, MapEntityStatus(model.StatusDeclined))
	assert.Equal(t, model.EntityStatusOngoing, MapEntityStatus(model.StatusNoOffer))
	assert.Equal(t, model.EntityStatusOngoing, MapEntityStatus(model.StatusSendoverDeclined))
	assert.Equal(t, model.EntityStatusSendout, MapEntityStatus(model.StatusActive))
}
