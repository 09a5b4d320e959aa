// internal/locale/locale.go
package locale

import "fmt"

// Lang is a two-letter language code. Every user-visible string exists in
// English and French; unknown codes fall back to English.
type Lang string

const (
	English Lang = "en"
	French  Lang = "fr"
)

// Normalize maps an arbitrary language code onto a supported Lang.
func Normalize(code string) Lang {
	switch code {
	case "fr", "FR", "fr-FR", "fr-CA":
		return French
	default:
		return English
	}
}

// Pick selects between the two variants of a string.
func Pick(lang Lang, en, fr string) string {
	if lang == French {
		return fr
	}
	return en
}

type entry struct {
	en string
	fr string
}

var catalog = map[string]entry{
	// Creation success messages, one per content type.
	"created.character": {
		en: `✅ Character "%s" created successfully! You can now talk with them.`,
		fr: `✅ Personnage « %s » créé avec succès ! Vous pouvez maintenant lui parler.`,
	},
	"created.location": {
		en: `✅ Location "%s" created successfully! It is now part of the world.`,
		fr: `✅ Lieu « %s » créé avec succès ! Il fait maintenant partie du monde.`,
	},
	"created.object": {
		en: `✅ Object "%s" created successfully! It appears in the inventory.`,
		fr: `✅ Objet « %s » créé avec succès ! Il apparaît dans l'inventaire.`,
	},
	"created.dialogue": {
		en: `✅ Dialogue created successfully! The exchange is ready to play.`,
		fr: `✅ Dialogue créé avec succès ! L'échange est prêt à être joué.`,
	},
	"created.story": {
		en: `✅ Story "%s" created successfully! The narrative can begin.`,
		fr: `✅ Histoire « %s » créée avec succès ! Le récit peut commencer.`,
	},
	"created.world": {
		en: `✅ World "%s" created successfully! New adventures await.`,
		fr: `✅ Monde « %s » créé avec succès ! De nouvelles aventures vous attendent.`,
	},
	"created.scenario": {
		en: `✅ Scenario "%s" created successfully! Ready when you are.`,
		fr: `✅ Scénario « %s » créé avec succès ! Prêt quand vous l'êtes.`,
	},
	"created.image": {
		en: `✅ Image created successfully!`,
		fr: `✅ Image créée avec succès !`,
	},
	"created.audio": {
		en: `✅ Audio created successfully!`,
		fr: `✅ Audio créé avec succès !`,
	},
	"created.video": {
		en: `✅ Video created successfully!`,
		fr: `✅ Vidéo créée avec succès !`,
	},

	// Failure messages.
	"creation.failed": {
		en: `❌ Creation failed: %s`,
		fr: `❌ Échec de la création : %s`,
	},
	"creation.unknown_type": {
		en: `❌ Unknown content type "%s".`,
		fr: `❌ Type de contenu inconnu « %s ».`,
	},
	"generation.failed": {
		en: `Generation failed: %s`,
		fr: `Échec de la génération : %s`,
	},
	"generation.cancelled": {
		en: `Generation cancelled.`,
		fr: `Génération annulée.`,
	},
	"image.no_prompt": {
		en: `No prompt could be derived for the image (expected prompt, description or name).`,
		fr: `Aucun prompt n'a pu être déduit pour l'image (prompt, description ou nom attendu).`,
	},
	"audio.no_text": {
		en: `No text could be derived for the audio (expected text, content or description).`,
		fr: `Aucun texte n'a pu être déduit pour l'audio (text, content ou description attendu).`,
	},
	"video.no_prompt": {
		en: `No prompt could be derived for the video (expected prompt, description or name).`,
		fr: `Aucun prompt n'a pu être déduit pour la vidéo (prompt, description ou nom attendu).`,
	},

	// Suggested actions attached to detection results.
	"suggest.character": {
		en: `Create this character and add them to the scene?`,
		fr: `Créer ce personnage et l'ajouter à la scène ?`,
	},
	"suggest.location": {
		en: `Create this location and place it on the map?`,
		fr: `Créer ce lieu et le placer sur la carte ?`,
	},
	"suggest.object": {
		en: `Create this object and add it to the inventory?`,
		fr: `Créer cet objet et l'ajouter à l'inventaire ?`,
	},
	"suggest.dialogue": {
		en: `Generate this dialogue between the characters?`,
		fr: `Générer ce dialogue entre les personnages ?`,
	},
	"suggest.story": {
		en: `Start a new story from this idea?`,
		fr: `Commencer une nouvelle histoire à partir de cette idée ?`,
	},
	"suggest.world": {
		en: `Build this world and make it the active setting?`,
		fr: `Construire ce monde et en faire le cadre actif ?`,
	},
	"suggest.scenario": {
		en: `Set up this scenario and invite the party in?`,
		fr: `Mettre en place ce scénario et y inviter le groupe ?`,
	},
	"suggest.image": {
		en: `Generate this image now?`,
		fr: `Générer cette image maintenant ?`,
	},
	"suggest.audio": {
		en: `Generate this audio now?`,
		fr: `Générer cet audio maintenant ?`,
	},
	"suggest.video": {
		en: `Generate this video now?`,
		fr: `Générer cette vidéo maintenant ?`,
	},

	// Auto-fill description fallbacks. %s is the world context (or "adventure").
	"autofill.description.character": {
		en: `A mysterious figure from the world of %s, whose story remains to be told.`,
		fr: `Une figure mystérieuse du monde de %s, dont l'histoire reste à raconter.`,
	},
	"autofill.description.location": {
		en: `A remarkable place in the world of %s, waiting to be explored.`,
		fr: `Un lieu remarquable du monde de %s, qui attend d'être exploré.`,
	},
	"autofill.description.object": {
		en: `A curious object from the world of %s, with properties not yet understood.`,
		fr: `Un objet curieux du monde de %s, aux propriétés encore inconnues.`,
	},
	"autofill.description.world": {
		en: `A vast world of %s inspiration, full of untold stories.`,
		fr: `Un vaste monde d'inspiration %s, plein d'histoires à raconter.`,
	},
	"autofill.description.story": {
		en: `A tale set in the world of %s, whose first chapter is about to begin.`,
		fr: `Un récit situé dans le monde de %s, dont le premier chapitre va commencer.`,
	},
	"autofill.description.scenario": {
		en: `An adventure set in the world of %s, with danger and reward in equal measure.`,
		fr: `Une aventure située dans le monde de %s, où dangers et récompenses se côtoient.`,
	},
	"autofill.context.default": {
		en: `adventure`,
		fr: `l'aventure`,
	},

	// Fixed two-line dialogue used when the dialogue LLM call fails.
	"dialogue.fallback.line1": {
		en: `We should talk about what happened.`,
		fr: `Nous devrions parler de ce qui s'est passé.`,
	},
	"dialogue.fallback.line2": {
		en: `Agreed. But not here — follow me.`,
		fr: `D'accord. Mais pas ici — suivez-moi.`,
	},
}

// T formats the catalog entry for the requested language. Missing keys
// return the key itself so a broken catalog is visible, never fatal.
func T(lang Lang, key string, args ...any) string {
	e, ok := catalog[key]
	if !ok {
		return key
	}
	msg := e.en
	if lang == French && e.fr != "" {
		msg = e.fr
	}
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}
