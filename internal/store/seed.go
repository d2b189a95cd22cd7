package store

import (
	"time"

	_ "embed"
)

//go:embed seedprompt.md
var seedPromptTemplate string

// Seed returns a store pre-filled with the demo dataset: three organisations,
// three subsidies, three personas and the default scoring prompt, which is
// immediately active. Matches and digests start empty.
func Seed() *Store {
	s := Empty()

	s.ReplaceOrganisations(seedOrganisations())
	s.ReplaceSubsidies(seedSubsidies(time.Now()))
	s.ReplacePersonas(seedPersonas())
	s.ReplacePrompts(seedPrompts(time.Now()))
	s.activePromptID = 1

	return s
}

func seedOrganisations() []*Organisation {
	return []*Organisation{
		{
			ID:           1,
			Name:         "ROC Midden Nederland",
			Subscription: SubscriptionPremium,
			Sector:       "onderwijs",
			OrgType:      "MBO-instelling",
			Revenue:      320_000_000,
			Employees:    3000,
			Location:     "Utrecht",
			Profile: "Grote regionale MBO-instelling met meerdere locaties en een sterke focus op " +
				"digitale didactiek, hybride onderwijs, praktijkleren en innovatieprogramma's " +
				"rond techniek, zorg en ICT. Organisatie werkt actief samen met bedrijven en " +
				"kennisinstellingen om digitale leerlijnen en adaptieve leermiddelen te ontwikkelen.",
			Website: "https://www.rocmn.nl",
		},
		{
			ID:           2,
			Name:         "Blue Analytics BV",
			Subscription: SubscriptionBasic,
			Sector:       "zakelijke dienstverlening",
			OrgType:      "Data- en AI-consultancy",
			Revenue:      4_200_000,
			Employees:    28,
			Location:     "Amsterdam",
			Profile: "Specialistisch consultancybureau dat organisaties ondersteunt bij het ontwikkelen " +
				"van data-gedreven strategieën. Expertise in machine learning, voorspellende modellen, " +
				"procesautomatisering en AI-implementaties voor mkb en grootzakelijke klanten. " +
				"Organisatie werkt aan innovatieprojecten met universiteiten en overheidsprogramma's " +
				"voor digitale transformatie.",
			Website: "https://www.blueanalytics.nl",
		},
		{
			ID:           3,
			Name:         "Zorggroep West-Brabant",
			Subscription: SubscriptionPremium,
			Sector:       "zorg",
			OrgType:      "VVT-instelling",
			Revenue:      185_000_000,
			Employees:    2600,
			Location:     "Breda",
			Profile: "Regionale VVT-zorgaanbieder met diverse locaties voor ouderenzorg, wijkverpleging en " +
				"behandeling. Sterke focus op digitale zorgoplossingen zoals monitoring op afstand, " +
				"beeldzorg, domotica en inzet van hybride zorgmodellen. Organisatie participeert in " +
				"meerdere innovatieprogramma's voor technologie in de langdurige zorg.",
			Website: "https://www.zgwb.nl",
		},
	}
}

func seedSubsidies(now time.Time) []*Subsidy {
	return []*Subsidy{
		{
			ID:          1,
			Name:        "MIT R&D-samenwerkingsprojecten AI",
			Source:      "RVO",
			DateAdded:   now.AddDate(0, 0, -30),
			ClosingDate: now.AddDate(0, 0, 60),
			Amount: "Subsidie voor R&D-samenwerkingsprojecten met AI als thema. " +
				"Indicatief: circa 35% van projectkosten met maximale bedragen " +
				"voor kleine en grote samenwerkingsprojecten (afhankelijk van de call).",
			Audience: "Mkb-ondernemingen die in een samenwerkingsverband werken aan R&D-projecten " +
				"voor de ontwikkeling of vernieuwing van producten, diensten of processen, " +
				"met duidelijke inzet van artificiële intelligentie.",
			Requirements: "- Project is een samenwerkingsproject tussen minimaal twee mkb-ondernemingen\n" +
				"- Draagt aantoonbaar bij aan ontwikkeling en inzet van AI in producten of processen\n" +
				"- Realistische planning en begroting, met technische haalbaarheid\n" +
				"- Voldoende eigen inbreng en financiering door de deelnemers\n",
			FullText: "Met de MIT R&D-samenwerkingsprojecten AI kunnen mkb-ondernemingen samen " +
				"investeren in de ontwikkeling van nieuwe AI-oplossingen. De regeling is gericht " +
				"op projecten waarin meerdere bedrijven samenwerken aan vernieuwende producten, " +
				"diensten of productieprocessen waarbij artificiële intelligentie een centrale rol " +
				"speelt. In de beoordeling wordt gelet op de innovatiehoogte, de economische " +
				"impact, de kwaliteit van de samenwerking en de haalbaarheid van de plannen.",
			Link: "https://www.rvo.nl/subsidies-financiering/mit/rd-samenwerkingsprojecten-ai",
		},
		{
			ID:          2,
			Name:        "Praktijkonderzoek naar opschaling van digitale en hybride zorg",
			Source:      "ZonMw",
			DateAdded:   now.AddDate(0, 0, -20),
			ClosingDate: now.AddDate(0, 0, 90),
			Amount: "Totaalbudget enkele miljoenen euro; per project indicatief tussen " +
				"€50.000 en €300.000, afhankelijk van type onderzoek en omvang van de opschaling.",
			Audience: "Zorg- en welzijnsorganisaties, kennisinstellingen en consortia die praktijkgericht " +
				"onderzoek willen doen naar de opschaling van digitale en hybride zorgprocessen.",
			Requirements: "- Focus op opschaling van bestaande digitale of hybride zorgtoepassingen\n" +
				"- Praktijkgericht onderzoek samen met zorgprofessionals en cliënten\n" +
				"- Aandacht voor randvoorwaarden zoals organisatie, financiën en implementatie\n" +
				"- Resultaten moeten herbruikbaar en overdraagbaar zijn naar andere organisaties\n",
			FullText: "Deze ZonMw-ronde richt zich op praktijkgericht onderzoek naar de opschaling van " +
				"digitale en hybride zorg. Projecten brengen in kaart wat nodig is om digitale zorg " +
				"duurzaam te implementeren in werkprocessen, hoe professionals en cliënten worden " +
				"meegenomen, welke organisatorische veranderingen vereist zijn en hoe financiering " +
				"en bekostiging kunnen worden ingericht.",
			Link: "https://www.zonmw.nl/nl/subsidie/praktijkgericht-onderzoek-naar-opschaling-van-digitale-hybride-zorg",
		},
		{
			ID:          3,
			Name:        "Implementatie- en opschalingscoaching Ouderen Thuis",
			Source:      "ZonMw",
			DateAdded:   now.AddDate(0, 0, -10),
			ClosingDate: now.AddDate(0, 0, 45),
			Amount: "Relatief kleinschalige subsidie per project voor het inzetten van een " +
				"implementatie- en opschalingscoach, gericht op het verder brengen van " +
				"bestaande zorginnovaties voor ouderen thuis.",
			Audience: "Zorgorganisaties en consortia die al een innovatie voor ouderen thuis in gebruik hebben " +
				"en ondersteuning zoeken om deze beter, sneller en duurzamer te implementeren of op te schalen.",
			Requirements: "- Innovatie is al ontwikkeld en in de praktijk getest of in gebruik\n" +
				"- Doel is opschaling of duurzame inbedding bij ouderen thuis\n" +
				"- Inzet van een implementatie- en opschalingscoach is duidelijk beschreven\n" +
				"- Heldere doelstellingen, beoogde resultaten en borgingsplan\n",
			FullText: "Met de regeling Implementatie- en opschalingscoaching Ouderen Thuis ondersteunt ZonMw " +
				"zorginnovatoren die hun bestaande innovatie voor ouderen thuis breder willen invoeren. " +
				"De subsidie is bedoeld om een onafhankelijke coach in te schakelen die helpt bij het " +
				"uitwerken van een implementatiestrategie, het wegnemen van knelpunten en het organiseren " +
				"van opschaling.",
			Link: "https://www.zonmw.nl/nl/subsidie/implementatie-en-opschalingscoaching-ouderen-thuis-ronde-3",
		},
	}
}

func seedPersonas() []*Persona {
	return []*Persona{
		{
			ID:      1,
			Sector:  "onderwijs",
			OrgType: "PO/VO-schoolbestuur",
			Description: "Middelgroot schoolbestuur dat wil investeren in digitale geletterdheid, " +
				"devices in de klas en professionalisering van docenten rond digitale didactiek.",
		},
		{
			ID:      2,
			Sector:  "zorg",
			OrgType: "Thuiszorgorganisatie",
			Description: "Thuiszorgorganisatie die ouderen langer zelfstandig thuis wil laten wonen " +
				"met beeldzorg, monitoring op afstand en ondersteuning van mantelzorgers.",
		},
		{
			ID:      3,
			Sector:  "industrie",
			OrgType: "Mkb-maakbedrijf",
			Description: "Maakbedrijf dat productieprocessen wil vernieuwen met sensordata, " +
				"voorspellend onderhoud en AI-gestuurde kwaliteitscontrole.",
		},
	}
}

func seedPrompts(now time.Time) []*PromptTemplate {
	return []*PromptTemplate{
		{
			ID:           1,
			Name:         "Standaard organisatiematch (volledige data)",
			Template:     seedPromptTemplate,
			LastModified: now,
			Active:       true,
		},
	}
}
