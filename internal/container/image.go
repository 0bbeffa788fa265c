package container

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/registry"
	"github.com/docker/docker/client"

	"github.com/dockrun/dockrun/internal/errdefs"
)

// EnsureImage makes ref available locally: local lookup first, then an
// anonymous pull, then an authenticated pull with credentials from the
// policy's Authenticator. Each failure escalates to the next strategy; the
// final failure surfaces as ImageUnavailableError.
func (r *Runner) EnsureImage(ctx context.Context, ref string, pol PullPolicy) error {
	log := clog.FromContext(ctx)

	_, _, err := r.cli.ImageInspectWithRaw(ctx, ref)
	if err == nil {
		log.Debug("image present locally", "ref", ref)
		return nil
	}
	if !client.IsErrNotFound(err) {
		return &errdefs.ImageUnavailableError{Ref: ref, Registry: registryOf(ref), Err: err}
	}
	if !pol.TryPull {
		return &errdefs.ImageUnavailableError{Ref: ref, Registry: registryOf(ref), Err: err}
	}

	log.Info("pulling image", "ref", ref)
	pullErr := r.pull(ctx, ref, "")
	if pullErr == nil {
		return nil
	}

	reg := registryOf(ref)
	if !pol.TryLogin || pol.Authenticator == nil {
		return &errdefs.ImageUnavailableError{Ref: ref, Registry: reg, Err: pullErr}
	}

	log.Debug("anonymous pull failed, trying login", "registry", reg, "err", pullErr)
	auth, err := pol.Authenticator(reg)
	if err != nil {
		return &errdefs.ImageUnavailableError{Ref: ref, Registry: reg, Err: err}
	}
	if auth.ServerAddress == "" {
		auth.ServerAddress = reg
	}
	if _, err := r.cli.RegistryLogin(ctx, auth); err != nil {
		return &errdefs.ImageUnavailableError{Ref: ref, Registry: reg, Err: fmt.Errorf("login failed: %w", err)}
	}

	encoded, err := registry.EncodeAuthConfig(auth)
	if err != nil {
		return &errdefs.ImageUnavailableError{Ref: ref, Registry: reg, Err: err}
	}
	if err := r.pull(ctx, ref, encoded); err != nil {
		return &errdefs.ImageUnavailableError{Ref: ref, Registry: reg, Err: err}
	}
	return nil
}

// pull performs one pull attempt, draining the progress stream. The pull
// is not complete until the stream reports EOF.
func (r *Runner) pull(ctx context.Context, ref, auth string) error {
	body, err := r.cli.ImagePull(ctx, ref, image.PullOptions{RegistryAuth: auth})
	if err != nil {
		return err
	}
	defer body.Close()
	if _, err := io.Copy(io.Discard, body); err != nil {
		return fmt.Errorf("reading pull progress: %w", err)
	}
	return nil
}

// registryOf extracts the registry host from an image reference. A first
// path segment containing a dot, a port, or "localhost" names a registry;
// anything else is Docker Hub.
func registryOf(ref string) string {
	seg, _, found := strings.Cut(ref, "/")
	if found && (strings.ContainsAny(seg, ".:") || seg == "localhost") {
		return seg
	}
	return "docker.io"
}
