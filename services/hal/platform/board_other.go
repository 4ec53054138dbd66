//go:build !linux && !(rp2040 || rp2350)

package platform

import (
	"sensordash/errcode"
	"sensordash/services/config"
	"sensordash/x/logx"
)

// Open has no hardware backend on this OS; use OpenSim.
func Open(cfg config.Config, _ logx.Logger) (*Board, error) {
	return nil, &errcode.E{C: errcode.Unsupported, Op: "platform", Msg: "no hardware backend for board " + cfg.Board}
}
