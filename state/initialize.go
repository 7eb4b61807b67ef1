package state

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"fxcss/css"
	"fxcss/dump"
	"fxcss/loader"
)

func newLocalEnv() *LocalEnv {
	return &LocalEnv{start: time.Now()}
}

// NewLoader creates stylesheet loader from parser configuration. Every loaded
// source is stored in debug report when one was requested.
func (e *LocalEnv) NewLoader() (*loader.Loader, error) {
	if e.Cfg == nil {
		return nil, fmt.Errorf("configuration has not been loaded")
	}
	opts := []loader.Option{
		loader.WithCharset(e.Cfg.Parser.Charset),
		loader.WithLoadHook(e.storeSource),
	}
	if e.Cfg.Parser.ArchiveCharset != "" {
		opts = append(opts, loader.WithArchiveNames(e.Cfg.Parser.ArchiveCharset))
	}
	return loader.New(e.logger(), opts...)
}

// NewParser creates parser which loads imports through ldr.
func (e *LocalEnv) NewParser(ldr *loader.Loader) (*css.Parser, error) {
	if e.Cfg == nil {
		return nil, fmt.Errorf("configuration has not been loaded")
	}
	origin, err := css.ParseOrigin(e.Cfg.Parser.Origin)
	if err != nil {
		return nil, err
	}
	opts := []css.Option{
		css.WithOrigin(origin),
		css.WithMaxImportDepth(e.Cfg.Parser.MaxImportDepth),
	}
	if ldr != nil {
		opts = append(opts, css.WithLoader(ldr), css.WithResolver(ldr))
	}
	return css.NewParser(e.logger(), opts...), nil
}

// StoreText puts generated text into debug report.
func (e *LocalEnv) StoreText(name, text string) {
	e.Rpt.StoreData(name, []byte(text))
}

func (e *LocalEnv) storeSource(location string, data []byte) {
	e.loaded++
	if e.Rpt == nil {
		return
	}
	name := dump.ReportName(e.loaded, location)
	e.Rpt.StoreData(name, data)
	e.logger().Debug("Source stored in report", zap.String("location", location), zap.String("entry", name))
}

func (e *LocalEnv) logger() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}
