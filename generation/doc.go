// Package generation dispatches image and speech generation requests to
// interchangeable providers and normalizes every outcome into a Result.
//
// Providers come in two kinds. A SyncBackend returns the artifact from its
// submission call; Sync adapts it. A JobBackend returns a JobHandle that is
// checked until terminal; AsyncJob adapts it with a Poller. Both adapters
// check credentials before any network call, download URL artifacts, and
// write through an artifact.Writer so that no partial file is ever left at
// the destination.
//
// The Dispatcher is the single point of provider selection:
//
//	d := generation.NewDispatcher(generation.WithDispatchLogger(log))
//	d.Register(generation.NewSync(hercaiBackend, writer, generation.WithDownloader(dl)))
//	d.Register(generation.NewAsyncJob(prodiaBackend, writer, generation.PollPolicy{Interval: 5 * time.Second}))
//
//	res := d.Dispatch(ctx, generation.Request{
//	    ProviderID:      "prodia",
//	    Payload:         "a lighthouse at dusk",
//	    DestinationPath: "out/lighthouse.png",
//	})
//	if !res.OK() {
//	    fmt.Println(res.Reason(), res.Failure.Message)
//	}
//
// Failures use the reasons AuthError, UpstreamError, Timeout,
// InvalidResponse and IOError. Cancellation is reported as Timeout with the
// message "cancelled".
package generation
