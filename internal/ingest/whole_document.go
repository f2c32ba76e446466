package ingest

import "context"

// WholeDocument implements the "whole-document" strategy: a single
// segment embedding and storing the file's entire content. Defined as
// a forward to SingleSegment with fixed parameters.
func WholeDocument(ctx context.Context, in FileInput) ([]SegmentDescriptor, error) {
	return SingleSegment(ctx, withParams(in, map[string]string{
		"embedding":        "whole-document",
		"content-strategy": "whole-document",
	}))
}

// FilePath implements the "file-path" strategy: embeds
// the file's content but stores the file id instead, useful for
// pure-lookup sources where the path itself is the payload.
func FilePath(ctx context.Context, in FileInput) ([]SegmentDescriptor, error) {
	return SingleSegment(ctx, withParams(in, map[string]string{
		"embedding":        "whole-document",
		"content-strategy": "file-path",
	}))
}

// withParams overrides in.Params with defaults: a convenience strategy's
// fixed parameters win over the same keys in source config, and every
// other source parameter is kept.
func withParams(in FileInput, defaults map[string]string) FileInput {
	merged := make(map[string]string, len(defaults)+len(in.Params))
	for k, v := range in.Params {
		merged[k] = v
	}
	for k, v := range defaults {
		merged[k] = v
	}
	in.Params = merged
	return in
}
