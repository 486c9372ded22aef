package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.FetchUploadActivity)
	w.RegisterActivity(a.ExpandUploadActivity)
	w.RegisterActivity(a.ExtractTextActivity)
	w.RegisterActivity(a.RegisterDocumentActivity)
	w.RegisterActivity(a.ChunkTextActivity)
	w.RegisterActivity(a.IndexChunksActivity)
	w.RegisterActivity(a.ExtractQuestionsActivity)
	w.RegisterActivity(a.SaveQuestionsActivity)
	w.RegisterActivity(a.AutoFixActivity)
	w.RegisterActivity(a.ConsistencySyncActivity)
	w.RegisterActivity(a.NotifyActivity)
}
