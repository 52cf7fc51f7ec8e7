package observer

import "go.opentelemetry.io/otel/attribute"

// Attribute keys for retrieval observability spans and metrics.
var (
	AttrEmbedProvider   = attribute.Key("embedding.provider")
	AttrEmbedModel      = attribute.Key("embedding.model")
	AttrEmbedTextCount  = attribute.Key("embedding.text_count")
	AttrEmbedDimensions = attribute.Key("embedding.dimensions")

	AttrQueryLength     = attribute.Key("retrieval.query_length")
	AttrResultCount     = attribute.Key("retrieval.result_count")
	AttrRetrievalStatus = attribute.Key("retrieval.status")

	AttrPassageLength = attribute.Key("rerank.passage_length")
	AttrRerankScore   = attribute.Key("rerank.score")
)
