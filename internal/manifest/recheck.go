package manifest

import (
	"context"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"github.com/commasubs/subtitle-overlay/pkg/log"
)

// Recheck periodically re-queries media ids whose last lookup found no
// subtitles. A 404 never enters the manifest cache, so a recheck is a plain
// Load that succeeds once subtitles have been published.
type Recheck struct {
	client *Client
	expr   string
	cron   *cron.Cron
	group  singleflight.Group
}

func NewRecheck(client *Client, c *cron.Cron, expr string) *Recheck {
	return &Recheck{
		client: client,
		expr:   expr,
		cron:   c,
	}
}

// Expression returns the cron expression the recheck runs on.
func (r *Recheck) Expression() string { return r.expr }

// Schedule registers the recheck job. Overlapping runs are collapsed.
func (r *Recheck) Schedule(ctx context.Context) error {
	_, err := r.cron.AddFunc(r.expr, func() {
		_, _, _ = r.group.Do("recheck", func() (any, error) {
			r.Run(ctx)
			return nil, nil
		})
	})
	return err
}

// Run performs one recheck pass over all ids with an empty language list.
func (r *Recheck) Run(ctx context.Context) {
	ids := r.client.EmptyIDs()
	if len(ids) == 0 {
		return
	}

	log.Debug("rechecking %d media ids without subtitles", len(ids))
	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		if _, err := r.client.Load(ctx, id); err != nil {
			log.Warn("recheck %s: %v", id, err)
		}
	}
}
