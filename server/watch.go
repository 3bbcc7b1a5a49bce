package server

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/surfdeck/surfdeck/errors"
	"github.com/surfdeck/surfdeck/surface"
)

// watchSlides recompiles .slide sources into the bundle's surfaces
// directory whenever they change.
func (s *Server) watchSlides(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.PhaseServe, errors.KindIO, err, "create watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(s.cfg.SlidesDir); err != nil {
		return errors.Wrap(errors.PhaseServe, errors.KindIO, err, "watch slides directory")
	}

	outDir := filepath.Join(s.cfg.Dir, "surfaces")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.Wrap(errors.PhaseServe, errors.KindIO, err, "create surfaces directory")
	}
	s.logger.Info("watching slides",
		zap.String("dir", s.cfg.SlidesDir),
		zap.String("out", outDir))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !strings.HasSuffix(event.Name, surface.SlideExt) {
				continue
			}
			s.recompile(event.Name, outDir)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watch error", zap.Error(err))
		}
	}
}

func (s *Server) recompile(slidePath, outDir string) {
	base := strings.TrimSuffix(filepath.Base(slidePath), surface.SlideExt)
	outPath := filepath.Join(outDir, base+surface.SurfaceExt)

	name, err := surface.ConvertFile(slidePath, outPath, surface.DefaultWidth, surface.DefaultHeight)
	if err != nil {
		s.logger.Error("recompile failed",
			zap.String("slide", slidePath),
			zap.Error(err))
		return
	}
	s.logger.Info("slide recompiled", zap.String("surface", name))
}
