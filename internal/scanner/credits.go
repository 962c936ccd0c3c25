package scanner

import "github.com/ozolsandis/peoplebook-backend/internal/domain"

// AssociateCredits attaches extracted photo credits to image descriptors by
// position. With exactly one credit and several images, the single credit is
// broadcast to every image lacking one.
//
// This is a best-effort heuristic carried over for compatibility: nothing
// verifies that credits actually appear in the same order as their images.
func AssociateCredits(images []domain.ImageDescriptor, credits []domain.PhotoCredit) []domain.ImageDescriptor {
	if len(credits) == 0 {
		return images
	}
	for i := range images {
		switch {
		case i < len(credits):
			images[i].Credit = credits[i].Text
		case len(credits) == 1 && len(images) > 1:
			if images[i].Credit == "" {
				images[i].Credit = credits[0].Text
			}
		}
	}
	return images
}
