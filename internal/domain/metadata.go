package domain

// MetadataFile is one entry in the metadata document's properties.files list.
type MetadataFile struct {
	URI  string `json:"uri"`
	Type string `json:"type"`
}

// MetadataProperties groups file and creator properties.
type MetadataProperties struct {
	Files    []MetadataFile `json:"files"`
	Category string         `json:"category"`
	Creator  string         `json:"creator,omitempty"`
}

// MetadataAttribute is a single trait entry built from social/creator fields.
type MetadataAttribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// MetadataCreator is an on-chain creator reference embedded in the document.
type MetadataCreator struct {
	Address  string `json:"address"`
	Verified bool   `json:"verified"`
	Share    int    `json:"share"`
}

// MetadataDocument is the off-chain JSON document pinned to content-addressed
// storage. Built once per request, serialized, uploaded and never mutated;
// only its content URI survives into the transaction build.
type MetadataDocument struct {
	Name                 string              `json:"name"`
	Symbol               string              `json:"symbol"`
	Description          string              `json:"description"`
	Image                string              `json:"image"`
	SellerFeeBasisPoints int                 `json:"seller_fee_basis_points"`
	ExternalURL          string              `json:"external_url,omitempty"`
	Properties           MetadataProperties  `json:"properties"`
	Attributes           []MetadataAttribute `json:"attributes"`
	Creators             []MetadataCreator   `json:"creators,omitempty"`
}
