package correct

import (
	"github.com/miyachan/lnx/internal/index"
)

// DocFields pre-corrects a document's configured text fields at index time,
// adding a shadow entry per field under the hashed shadow name. Originals
// are never touched, so normal queries keep matching the raw text while the
// fast-fuzzy path targets the corrected shadows.
func DocFields(doc index.Document, indexedTextFields []string, corrector Corrector) {
	type change struct {
		key  string
		item index.DocumentItem
	}
	var changes []change

	for _, target := range indexedTextFields {
		item, ok := doc[target]
		if !ok {
			continue
		}
		shadow := index.ShadowField(target)

		switch it := item.(type) {
		case index.Single:
			if text, ok := it.Value.(index.Text); ok {
				corrected := corrector(string(text), DefaultMaxEditDistance)
				changes = append(changes, change{shadow, index.Single{Value: index.Text(corrected)}})
			}
		case index.Multi:
			var corrected []index.DocumentValue
			for _, v := range it.Values {
				if text, ok := v.(index.Text); ok {
					corrected = append(corrected, index.Text(corrector(string(text), DefaultMaxEditDistance)))
				}
			}
			// No text values means no shadow entry at all.
			if len(corrected) > 0 {
				changes = append(changes, change{shadow, index.Multi{Values: corrected}})
			}
		}
	}

	for _, c := range changes {
		doc[c.key] = c.item
	}
}
