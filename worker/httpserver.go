package worker

import (
	"context"
	"net/http"
	"time"

	"github.com/cubefs/cubefs/blobstore/common/profile"
	"github.com/cubefs/cubefs/blobstore/common/rpc"
	"github.com/cubefs/cubefs/blobstore/common/rpc/auditlog"
	"github.com/cubefs/cubefs/blobstore/common/trace"
	"github.com/cubefs/cubefs/blobstore/util/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apierrors "github.com/stratofs/stratofs/errors"
	"github.com/stratofs/stratofs/metrics"
	"github.com/stratofs/stratofs/proto"
)

const (
	defaultShutdownTimeoutS      = 10
	defaultReadRequestTimeoutS   = 30
	defaultWriteResponseTimeoutS = 30
)

type HttpServer struct {
	httpServer *http.Server
	auditLog   auditlog.LogCloser

	*Worker
}

func NewHttpServer(worker *Worker) *HttpServer {
	return &HttpServer{Worker: worker}
}

func (h *HttpServer) Serve(addr string) {
	handlers := []rpc.ProgressHandler{profile.NewProfileHandler(addr)}
	if h.cfg.AuditLog.LogDir != "" {
		lh, logFile, err := auditlog.Open("WORKER", &h.cfg.AuditLog)
		if err != nil {
			log.Fatal("open audit log:", err)
		}
		h.auditLog = logFile
		handlers = append(handlers, lh)
	}

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      rpc.MiddlewareHandlerWith(h.newHandler(), handlers...),
		ReadTimeout:  defaultReadRequestTimeoutS * time.Second,
		WriteTimeout: defaultWriteResponseTimeoutS * time.Second,
	}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server exits:", err)
		}
	}()
	h.httpServer = httpServer

	log.Info("http server is running at:", addr)
}

func (h *HttpServer) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeoutS*time.Second)
	defer cancel()

	h.httpServer.Shutdown(ctx)
	if h.auditLog != nil {
		h.auditLog.Close()
	}
}

func (h *HttpServer) newHandler() *rpc.Router {
	router := rpc.New()
	router.Handle(http.MethodGet, "/stats", h.Stats, rpc.OptArgsQuery())
	router.Handle(http.MethodPost, "/ufs/mount", h.Mount, rpc.OptArgsBody())
	router.Handle(http.MethodPost, "/ufs/unmount", h.Unmount, rpc.OptArgsBody())
	router.Handle(http.MethodGet, "/metrics", h.Metrics)
	return router
}

func (h *HttpServer) Stats(c *rpc.Context) {
	c.RespondJSON(&proto.StatsRet{
		Role:   h.manager.Role().String(),
		Mounts: h.manager.Stats(),
	})
}

// Mount publishes a mount administratively. The usual path is lazy
// population from the master; this exists for operator driven flows.
func (h *HttpServer) Mount(c *rpc.Context) {
	ctx := c.Request.Context()
	span := trace.SpanFromContextSafe(ctx)

	args := new(proto.MountArgs)
	if err := c.ParseArgs(args); err != nil {
		c.RespondError(err)
		return
	}
	if args.MountID == proto.InvalidMountID || args.Uri == "" {
		c.RespondError(rpc.NewError(http.StatusBadRequest, "BadRequest", apierrors.ErrInvalidUri))
		return
	}

	if _, err := h.manager.AddMount(ctx, args.MountID, args.Uri, args.Properties, args.ReadOnly); err != nil {
		span.Errorf("mount %d at %s failed: %s", args.MountID, args.Uri, err)
		c.RespondError(rpc.NewError(http.StatusServiceUnavailable, "Unavailable", err))
		return
	}
	c.Respond()
}

func (h *HttpServer) Unmount(c *rpc.Context) {
	args := new(proto.UnmountArgs)
	if err := c.ParseArgs(args); err != nil {
		c.RespondError(err)
		return
	}
	if !h.manager.RemoveMount(c.Request.Context(), args.MountID) {
		c.RespondError(rpc.NewError(http.StatusNotFound, "NotFound", apierrors.ErrMountNotFound))
		return
	}
	c.Respond()
}

func (h *HttpServer) Metrics(c *rpc.Context) {
	promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}).
		ServeHTTP(c.Writer, c.Request)
}
