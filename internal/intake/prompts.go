package intake

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	promptGreeting = "Hi, thanks for calling %s. I will ask a few quick questions to estimate your offer."

	promptDrives      = "Does the car drive? Press 1 for yes. Press 2 for no."
	promptDrivesRetry = "Press 1 if it drives, press 2 if it does not."

	promptYear       = "Enter the car year using 4 digits. For example, 2012."
	promptYearFormat = "Please enter a 4 digit year. For example, 2015."
	promptYearRange  = "That year is not valid. Please enter a year between %d and %d."

	promptMake      = "Now say the car make. For example, Toyota, Honda, Ford, or BMW."
	promptMakeRetry = "Sorry, I did not catch the make. Please say it again."

	promptEarlyAskPrice      = "How much would you like to sell it for? You can enter digits like 500, or say the amount."
	promptEarlyAskPriceRetry = "Sorry, I could not read that amount. Please enter digits like 250 or 500."
	promptEarlyOffer         = "The best we can do is %d dollars. Press 1 to accept. Press 2 to reject."
	promptAcceptRejectRetry  = "Press 1 to accept, or press 2 to reject."

	promptModel      = "Please say the car model. For example, Civic, Corolla, or F one fifty."
	promptModelRetry = "Sorry, I did not catch the model. Please say it again."

	promptMileage       = "Enter the mileage in kilometers, numbers only. For example, enter 150000."
	promptMileageFormat = "Please enter mileage using numbers only. Example: 150000."
	promptMileageRange  = "That mileage seems unusual. Please enter it again. Example: 150000."

	promptAskingPrice      = "How much are you trying to sell the car for? Enter the amount in dollars, numbers only. For example, enter 1200."
	promptAskingPriceRetry = "Please enter the amount in dollars using numbers only. Example: 1200."

	promptCity             = "Please say your pickup city. For example, Surrey, Vancouver, Abbotsford, or Langley."
	promptCityRetry        = "Sorry, I did not catch the city. Please say it again."
	promptCityConfirm      = "I heard %s. Press 1 to confirm. Press 2 to say it again."
	promptCityConfirmRetry = "Press 1 to confirm the city, or press 2 to say it again."
	promptCityAgain        = "Okay. Please say your pickup city again."

	promptPostal             = "To estimate distance, please say your postal code. For example, V six V one M seven."
	promptPostalRetry        = "Sorry, I could not understand the postal code. Please say it again, for example, V six V one M seven."
	promptPostalConfirm      = "I heard %s. Press 1 to confirm. Press 2 to say it again."
	promptPostalConfirmRetry = "Press 1 to confirm the postal code, or press 2 to say it again."
	promptPostalAgain        = "Okay. Please say your postal code again."
	promptPostalSkipped      = "No problem, we will use your city instead."

	promptCondition      = "Briefly describe the condition. For example, accident damage, engine issue, fire damage, or normal wear."
	promptConditionRetry = "Sorry, I did not catch the condition. Please describe it again."

	promptQuote        = "Thanks. For your %s in %s%s, our rough estimate is %s."
	promptQuoteClosing = "A human will confirm the final offer shortly. Goodbye."

	promptAutoOffer           = "Based on the details, we can offer $%d. Press 1 to accept. Press 2 to make a counter offer."
	promptAutoOfferRetry      = "Press 1 to accept the offer, or press 2 to make a counter offer."
	promptCounter             = "Okay. What price would you accept? Enter the amount in dollars, numbers only. For example, 350."
	promptCounterRetry        = "Sorry, I could not read that amount. Please enter the amount in dollars. For example, 350."
	promptCapOffer            = "The best we can do is $%d. Press 1 to accept. Press 2 to reject."
	promptAcceptedAmount      = "Perfect. We have accepted $%d. A human will confirm pickup details shortly. Goodbye."
	promptAcceptedEarly       = "Perfect. We have accepted %d dollars. A human will confirm pickup details shortly. Goodbye."
	promptAcceptedCounterOkay = "Okay. We can do $%d. A human will confirm pickup details shortly. Goodbye."

	promptManagerReview = "No problem. We'll have a manager review this and call you back soon. Is this the best number to call you back on? Press 1 for yes. Press 2 to enter a different number."
	promptRetryLimit    = "Sorry, I am having trouble understanding. A team member will call you back. Is this the best number to call you back on? Press 1 for yes. Press 2 to enter a different number."

	promptCallbackBestRetry   = "Press 1 for yes, or press 2 to enter a different callback number."
	promptCallbackNumber      = "Please enter the best callback number now, including area code. Numbers only."
	promptCallbackNumberRetry = "That number seems invalid. Please enter the callback number again, numbers only."
	promptCallbackSame        = "Great. We'll call you back shortly. Goodbye."
	promptCallbackOther       = "Thanks. We'll call you back shortly. Goodbye."
	promptCallbackGiveUp      = "Sorry, we are having trouble. A team member will call you back on this number. Goodbye."

	promptSystemError = "Sorry, we had a system error. Please call again later."
)

// quoteLines builds the two sentences read with a price range.
func quoteLines(s *Session) []string {
	vehicle := strings.Join(nonEmpty(s.Year, s.Make.Value(), s.Model.Normalized), " ")
	distance := ""
	if s.DistanceKm != nil {
		distance = " about " + strconv.FormatFloat(*s.DistanceKm, 'f', -1, 64) + " kilometers away"
	}
	return []string{
		fmt.Sprintf(promptQuote, vehicle, s.City.Value(), distance, s.PriceText),
		promptQuoteClosing,
	}
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
