package domain

// Product is a catalog product as served by the product service. Variants
// carry ParentID and the options that tell them apart.
type Product struct {
	ID          string          `json:"id"`
	ParentID    string          `json:"parent_id,omitempty"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	BasePrice   int64           `json:"base_price"`
	Currency    string          `json:"currency"`
	Available   bool            `json:"available"`
	Options     []ProductOption `json:"options,omitempty"`
	Images      []ProductImage  `json:"images,omitempty"`
}

// FamilyID is the id shared by a parent product and all of its variants.
func (p *Product) FamilyID() string {
	if p.ParentID != "" {
		return p.ParentID
	}
	return p.ID
}

// OptionIDs maps option group id to option id.
func (p *Product) OptionIDs() map[string]string {
	out := make(map[string]string, len(p.Options))
	for _, o := range p.Options {
		out[o.GroupID] = o.ID
	}
	return out
}

// ProductOption is one property value of a variant, e.g. colour "red".
type ProductOption struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	GroupID   string `json:"group_id"`
	GroupName string `json:"group_name"`
}

// ProductImage is a media entry of a product.
type ProductImage struct {
	URL       string `json:"url"`
	AltText   string `json:"alt_text"`
	IsPrimary bool   `json:"is_primary"`
}

// ConfiguratorGroup lists the selectable options of one group across a
// product family.
type ConfiguratorGroup struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Options []ProductOption `json:"options"`
}

// VariantSelection is a variant switch request.
type VariantSelection struct {
	ProductID string
	Switched  string
	Options   map[string]string
}

// FoundCombination is the variant a selection resolved to.
type FoundCombination struct {
	VariantID string   `json:"variantId"`
	Options   []string `json:"options"`
}

// ProductPage is the data behind the product detail page.
type ProductPage struct {
	Product      *Product            `json:"product"`
	Configurator []ConfiguratorGroup `json:"configurator,omitempty"`
	Reviews      *ReviewSummary      `json:"reviews,omitempty"`
	Meta         PageMeta            `json:"meta"`
}

// QuickViewPage is the reduced product data for the quick view modal.
type QuickViewPage struct {
	Product   *Product       `json:"product"`
	Reviews   *ReviewSummary `json:"reviews,omitempty"`
	DetailURL string         `json:"detailUrl"`
}

// PageMeta carries the head information of a rendered page.
type PageMeta struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	CanonicalURL string `json:"canonical"`
}
