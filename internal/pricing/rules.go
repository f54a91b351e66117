package pricing

// ResolveRules applies the document overrides on top of the gîte rules.
func (s OptionSelection) ResolveRules(defaults HouseRules) HouseRules {
	rules := defaults
	if s.PetsAllowed != nil {
		rules.PetsAllowed = *s.PetsAllowed
	}
	if s.FirstFireWood != nil {
		rules.FirstFireWood = *s.FirstFireWood
	}
	if s.ThirdPartyNotice != nil {
		rules.ThirdPartyNotice = *s.ThirdPartyNotice
	}
	return rules
}

// Normalize pins the resolved rules onto the selection and disables pets
// when the resolved rules refuse them.
func Normalize(s OptionSelection, defaults HouseRules) OptionSelection {
	rules := s.ResolveRules(defaults)
	next := s.clone()
	next.PetsAllowed = boolPtr(rules.PetsAllowed)
	next.FirstFireWood = boolPtr(rules.FirstFireWood)
	next.ThirdPartyNotice = boolPtr(rules.ThirdPartyNotice)
	if !rules.PetsAllowed {
		next.Pets = &PetsOption{Count: intPtr(0)}
	}
	return next
}

func (s OptionSelection) clone() OptionSelection {
	out := OptionSelection{}
	if s.Bedding != nil {
		v := *s.Bedding
		v.Beds = cloneInt(v.Beds)
		out.Bedding = &v
	}
	if s.Towels != nil {
		v := *s.Towels
		v.Persons = cloneInt(v.Persons)
		out.Towels = &v
	}
	if s.Cleaning != nil {
		v := *s.Cleaning
		out.Cleaning = &v
	}
	if s.LateCheckout != nil {
		v := *s.LateCheckout
		out.LateCheckout = &v
	}
	if s.Pets != nil {
		v := *s.Pets
		v.Count = cloneInt(v.Count)
		out.Pets = &v
	}
	if s.PetsAllowed != nil {
		out.PetsAllowed = boolPtr(*s.PetsAllowed)
	}
	if s.FirstFireWood != nil {
		out.FirstFireWood = boolPtr(*s.FirstFireWood)
	}
	if s.ThirdPartyNotice != nil {
		out.ThirdPartyNotice = boolPtr(*s.ThirdPartyNotice)
	}
	return out
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	return intPtr(*v)
}
