package intake

// Step identifies where a call is in the intake script.
type Step string

const (
	StepDrives              Step = "drives"
	StepYear                Step = "year"
	StepMake                Step = "make"
	StepEarlyAskPrice       Step = "early_ask_price"
	StepEarlyOfferConfirm   Step = "early_offer_350_confirm"
	StepModel               Step = "model"
	StepMileage             Step = "mileage"
	StepAskingPrice         Step = "asking_price"
	StepCity                Step = "city"
	StepCityConfirm         Step = "city_confirm"
	StepPostal              Step = "postal"
	StepPostalConfirm       Step = "postal_confirm"
	StepCondition           Step = "condition"
	StepAutoOfferPresent    Step = "auto_offer_present"
	StepAutoOfferCounter    Step = "auto_offer_counter"
	StepAutoOfferCapConfirm Step = "auto_offer_cap_confirm"
	StepCallbackBestNumber  Step = "callback_best_number"
	StepCallbackNumber      Step = "callback_number"
	StepDone                Step = "done"
)

var allSteps = []Step{
	StepDrives,
	StepYear,
	StepMake,
	StepEarlyAskPrice,
	StepEarlyOfferConfirm,
	StepModel,
	StepMileage,
	StepAskingPrice,
	StepCity,
	StepCityConfirm,
	StepPostal,
	StepPostalConfirm,
	StepCondition,
	StepAutoOfferPresent,
	StepAutoOfferCounter,
	StepAutoOfferCapConfirm,
	StepCallbackBestNumber,
	StepCallbackNumber,
	StepDone,
}

// Steps returns every step in canonical order.
func Steps() []Step {
	out := make([]Step, len(allSteps))
	copy(out, allSteps)
	return out
}

// Valid reports whether s is a known step.
func (s Step) Valid() bool {
	for _, step := range allSteps {
		if s == step {
			return true
		}
	}
	return false
}

func (s Step) isCallback() bool {
	return s == StepCallbackBestNumber || s == StepCallbackNumber
}
