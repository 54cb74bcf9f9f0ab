package gemini

// SchemaType mirrors the OpenAPI subset Gemini accepts for response schemas.
type SchemaType string

const (
	TypeString SchemaType = "STRING"
	TypeNumber SchemaType = "NUMBER"
	TypeObject SchemaType = "OBJECT"
	TypeArray  SchemaType = "ARRAY"
)

// Schema declares the shape a structured response must conform to.
type Schema struct {
	Type        SchemaType         `json:"type"`
	Description string             `json:"description,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Nullable    bool               `json:"nullable,omitempty"`
	MinItems    int                `json:"minItems,omitempty"`
	MaxItems    int                `json:"maxItems,omitempty"`
}

// String is a shorthand for a described string schema.
func String(description string) *Schema {
	return &Schema{Type: TypeString, Description: description}
}

// StringEnum is a shorthand for a string schema constrained to fixed values.
func StringEnum(description string, values ...string) *Schema {
	return &Schema{Type: TypeString, Description: description, Enum: values}
}

// Array is a shorthand for an array schema.
func Array(description string, items *Schema) *Schema {
	return &Schema{Type: TypeArray, Description: description, Items: items}
}

// Object is a shorthand for an object schema.
func Object(properties map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: TypeObject, Properties: properties, Required: required}
}
