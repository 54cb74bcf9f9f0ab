package prescription

import (
	"fmt"

	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/infra/llm/gemini"
)

func prescriptionSchema() *gemini.Schema {
	return gemini.Array("", gemini.Object(map[string]*gemini.Schema{
		"name":     gemini.String("The name of the medicine."),
		"dosage":   gemini.String(`The dosage instruction (e.g., "500mg", "1-0-1"). Can be null if not found.`),
		"quantity": gemini.String(`The quantity prescribed (e.g., "10 tablets"). Can be null if not found.`),
	}, "name"))
}

func priceSchema() *gemini.Schema {
	return gemini.Array("Pricing from major Indian online pharmacies and e-commerce sites.",
		gemini.Object(map[string]*gemini.Schema{
			"pharmacy": gemini.String("Name of the vendor (e.g., 'Tata 1mg', 'Apollo Pharmacy', 'NetMeds', 'Amazon.in')."),
			"price":    gemini.String("Price in INR (e.g., '₹15.50')."),
			"discount": gemini.String("Optional discount (e.g., '20% OFF')."),
		}, "pharmacy", "price"))
}

func alternativeSchema() *gemini.Schema {
	return gemini.Object(map[string]*gemini.Schema{
		"genericName":     gemini.String("The common brand name of the generic medicine."),
		"saltComposition": gemini.String("The active pharmaceutical ingredient(s)."),
		"strength":        gemini.String(`The strength of the medicine (e.g., "500 mg").`),
		"form":            gemini.String(`The dosage form (e.g., "Tablet", "Syrup").`),
		"prices":          priceSchema(),
		"safetyNote":      gemini.String("Any general safety note, like if it requires supervision in India. Should be null if no special note."),
		"cdscoStatus":     gemini.StringEnum("The CDSCO approval status in India.", "Approved", "Banned", "Under Review", "N/A"),
		"schedule":        gemini.StringEnum("The drug schedule in India.", "Schedule H", "OTC", "Ayurvedic", "General", "N/A"),
		"recallNotice":    gemini.String("Any official recall notices or warnings. Must be null if none exist."),
	}, "genericName", "saltComposition", "strength", "form", "prices", "cdscoStatus", "schedule", "recallNotice")
}

// batchSchema builds the per-request response contract: one object property
// per input name, each shaped as a BrandedAnalysis. A single round trip covers
// an arbitrary-size batch.
func batchSchema(names []string) *gemini.Schema {
	properties := make(map[string]*gemini.Schema, len(names))
	for _, name := range names {
		properties[name] = gemini.Object(map[string]*gemini.Schema{
			"brandedSaltComposition": gemini.String(fmt.Sprintf("The salt composition for the branded medicine %s.", name)),
			"alternatives":           gemini.Array(fmt.Sprintf("Generic alternatives for %s", name), alternativeSchema()),
		}, "brandedSaltComposition", "alternatives")
	}
	return &gemini.Schema{
		Type:       gemini.TypeObject,
		Properties: properties,
	}
}
