package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.ExtractTextActivity)
	w.RegisterActivity(a.ExtractStructuredActivity)
	w.RegisterActivity(a.VerifyActivity)
	w.RegisterActivity(a.SummarizeActivity)
}
