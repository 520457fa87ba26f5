package system

import (
	"context"
	"image"
	"sync"

	"github.com/milk9111/brushtoy/ecs"
	"github.com/milk9111/brushtoy/ecs/component"
	"github.com/milk9111/brushtoy/ecs/entity"
	"go.uber.org/zap"
)

// ImageLoader decodes a fill image reference. Load runs off the simulation
// goroutine and must be safe for concurrent use.
type ImageLoader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

type fillImageResult struct {
	entity ecs.Entity
	token  uint64
	ref    string
	img    image.Image
	err    error
}

// FillImageSystem starts a load for every new FillImageRequest and applies
// completed loads on a later tick. A completion is applied only if the brush
// is still alive and its request token still matches; failures change
// nothing.
type FillImageSystem struct {
	loader  ImageLoader
	results chan fillImageResult
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	log     *zap.Logger
}

func NewFillImageSystem(loader ImageLoader, log *zap.Logger) *FillImageSystem {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &FillImageSystem{
		loader:  loader,
		results: make(chan fillImageResult, 32),
		ctx:     ctx,
		cancel:  cancel,
		log:     log,
	}
}

func (s *FillImageSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	s.applyCompleted(w)
	s.startPending(w)
}

// Wait blocks until every started load has delivered its result.
func (s *FillImageSystem) Wait() {
	s.wg.Wait()
}

// Close abandons in-flight loads.
func (s *FillImageSystem) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *FillImageSystem) applyCompleted(w *ecs.World) {
	for {
		select {
		case r := <-s.results:
			s.apply(w, r)
		default:
			return
		}
	}
}

func (s *FillImageSystem) apply(w *ecs.World, r fillImageResult) {
	req, ok := ecs.Get(w, r.entity, component.FillImageRequestComponent)
	if !ok || req.Token != r.token {
		s.log.Debug("dropping stale fill image", zap.String("ref", r.ref))
		return
	}
	ecs.Remove(w, r.entity, component.FillImageRequestComponent)
	if r.err != nil {
		s.log.Debug("fill image load failed", zap.String("ref", r.ref), zap.Error(r.err))
		return
	}
	brush, ok := entity.BrushFor(w, r.entity)
	if !ok {
		return
	}
	if err := brush.ApplyFillImage(r.ref, r.img, req.Quiet); err != nil {
		s.log.Debug("apply fill image", zap.String("brush", brush.ID()), zap.Error(err))
	}
}

func (s *FillImageSystem) startPending(w *ecs.World) {
	for _, e := range w.Query(component.FillImageRequestComponent) {
		req, _ := ecs.Get(w, e, component.FillImageRequestComponent)
		if req.Started {
			continue
		}
		if s.loader == nil {
			ecs.Remove(w, e, component.FillImageRequestComponent)
			s.log.Debug("no image loader, dropping fill image", zap.String("ref", req.Ref))
			continue
		}
		req.Started = true
		_ = ecs.Add(w, e, component.FillImageRequestComponent, req)

		s.wg.Add(1)
		go func(e ecs.Entity, token uint64, ref string) {
			defer s.wg.Done()
			img, err := s.loader.Load(s.ctx, ref)
			s.deliver(fillImageResult{entity: e, token: token, ref: ref, img: img, err: err})
		}(e, req.Token, req.Ref)
	}
}

func (s *FillImageSystem) deliver(r fillImageResult) {
	select {
	case s.results <- r:
	case <-s.ctx.Done():
	}
}
