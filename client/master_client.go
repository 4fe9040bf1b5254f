package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cubefs/cubefs/blobstore/common/rpc"

	apierrors "github.com/stratofs/stratofs/errors"
	"github.com/stratofs/stratofs/proto"
)

type (
	MasterConfig struct {
		MasterAddresses []string     `json:"master_addresses"`
		LbConfig        rpc.LbConfig `json:"rpc"`
	}

	// MasterClient queries the authoritative mount table over the
	// master's HTTP API.
	MasterClient struct {
		cli rpc.Client
	}
)

func NewMasterClient(cfg *MasterConfig) (*MasterClient, error) {
	if len(cfg.MasterAddresses) == 0 && len(cfg.LbConfig.Hosts) == 0 {
		return nil, errors.New("master address can't be nil")
	}
	if len(cfg.MasterAddresses) > 0 {
		cfg.LbConfig.Hosts = cfg.MasterAddresses
	}
	return &MasterClient{cli: rpc.NewLbClient(&cfg.LbConfig, nil)}, nil
}

// GetUfsInfo resolves a mount id. The master answering 404 means the id
// does not exist anywhere and is surfaced as ErrUnknownMount; every other
// failure is transient from this layer's point of view.
func (c *MasterClient) GetUfsInfo(ctx context.Context, mountID proto.MountID) (*proto.UfsInfo, error) {
	info := &proto.UfsInfo{}
	url := fmt.Sprintf("/ufs/info?mount_id=%d", mountID)
	if err := c.cli.GetWith(ctx, url, info); err != nil {
		if rpc.DetectStatusCode(err) == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %d", apierrors.ErrUnknownMount, mountID)
		}
		return nil, fmt.Errorf("%w: get ufs info for mount %d: %v", apierrors.ErrUfsUnavailable, mountID, err)
	}
	return info, nil
}

func (c *MasterClient) Close() error {
	c.cli.Close()
	return nil
}
