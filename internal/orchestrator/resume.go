package orchestrator

import "context"

// Resume is called once at process start: it sweeps leftover workspace
// directories from any prior crash so a restart never leaves stale
// workspaces on disk, then re-drives every Intent not in a terminal state
// from its last persisted phase. An Intent stuck at StatusParsing has no
// persisted ParsedIntent to resume from, so Continue treats it as a no-op
// here rather than silently re-spending AI cost on process restart; a
// caller retries those by resubmitting the original raw message.
func (o *Orchestrator) Resume() error {
	if _, err := o.Workspace.Sweep(context.Background()); err != nil {
		return err
	}

	open, err := o.Store.ListOpenIntents()
	if err != nil {
		return err
	}
	for _, intent := range open {
		if err := o.Continue(intent); err != nil {
			o.Log.Error().Str("intent_id", intent.ID).Err(err).Msg("resume failed to continue intent")
		}
	}
	return nil
}
