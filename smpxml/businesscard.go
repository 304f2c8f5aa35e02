package smpxml

// Contact is one BusinessCard contact entry.
type Contact struct {
	TypeCode    string
	Name        string
	PhoneNumber string
	Email       string
}

// BusinessEntity is the organizational identity published by a BusinessCard.
type BusinessEntity struct {
	Name                    string
	CountryCode             string
	Identifiers             []DocumentID
	GeographicalInformation string
	Websites                []string
	Contacts                []Contact
}

// ParseBusinessCard decodes a BusinessCard document. Absence of the
// BusinessCard/BusinessEntity structure at the expected location is not
// an error: it yields (nil, nil), signaling an absent card, distinct from
// a transport/parse failure which returns a non-nil error.
func ParseBusinessCard(data []byte) (*BusinessEntity, error) {
	doc, err := loadDocument("BusinessCard", data)
	if err != nil {
		return nil, err
	}

	root := doc.Root()
	var cardEl = root
	if root.Tag != "BusinessCard" {
		cardEl = root.FindElement(".//BusinessCard")
		if cardEl == nil {
			return nil, nil
		}
	}

	entityEl := cardEl.SelectElement("BusinessEntity")
	if entityEl == nil {
		return nil, nil
	}

	entity := &BusinessEntity{}
	entity.Name, _ = childText(entityEl, "Name")
	entity.CountryCode, _ = childText(entityEl, "CountryCode")
	entity.GeographicalInformation, _ = childText(entityEl, "GeographicalInformation")

	for _, idEl := range entityEl.SelectElements("Identifier") {
		scheme := idEl.SelectAttrValue("scheme", "")
		value := idEl.Text()
		if scheme == "" && value == "" {
			continue
		}
		entity.Identifiers = append(entity.Identifiers, DocumentID{Scheme: scheme, Value: value})
	}

	for _, wsEl := range entityEl.SelectElements("WebsiteURI") {
		if text := wsEl.Text(); text != "" {
			entity.Websites = append(entity.Websites, text)
		}
	}

	for _, contactEl := range entityEl.SelectElements("Contact") {
		c := Contact{}
		c.TypeCode, _ = childText(contactEl, "TypeCode")
		c.Name, _ = childText(contactEl, "Name")
		c.PhoneNumber, _ = childText(contactEl, "PhoneNumber")
		c.Email, _ = childText(contactEl, "Email")
		entity.Contacts = append(entity.Contacts, c)
	}

	return entity, nil
}
